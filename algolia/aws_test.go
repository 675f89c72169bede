package algolia

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/secretsmanager"
)

// mockSecretsManagerClient implements SecretsManagerClient for testing
type mockSecretsManagerClient struct {
	secretValue *string
	err         error
	requested   string
}

func (m *mockSecretsManagerClient) GetSecretValue(ctx context.Context, params *secretsmanager.GetSecretValueInput, optFns ...func(*secretsmanager.Options)) (*secretsmanager.GetSecretValueOutput, error) {
	m.requested = aws.ToString(params.SecretId)
	if m.err != nil {
		return nil, m.err
	}

	return &secretsmanager.GetSecretValueOutput{
		SecretString: m.secretValue,
	}, nil
}

func TestAWSSecrets(t *testing.T) {
	tests := []struct {
		name        string
		env         string
		client      *mockSecretsManagerClient
		expectPath  string
		expectErr   string
		expectAppID string
		expectKey   string
	}{
		{
			name:        "success",
			env:         "production",
			client:      &mockSecretsManagerClient{secretValue: aws.String(`{"app_id":"test-app-id","api_key":"test-api-key"}`)},
			expectPath:  "production/algolia",
			expectAppID: "test-app-id",
			expectKey:   "test-api-key",
		},
		{
			name:        "environment path",
			env:         "staging",
			client:      &mockSecretsManagerClient{secretValue: aws.String(`{"app_id":"staging-app-id","api_key":"staging-api-key"}`)},
			expectPath:  "staging/algolia",
			expectAppID: "staging-app-id",
			expectKey:   "staging-api-key",
		},
		{
			name:       "get secret error",
			env:        "production",
			client:     &mockSecretsManagerClient{err: errors.New("secrets manager error")},
			expectPath: "production/algolia",
			expectErr:  "failed to get secret from AWS Secrets Manager at path production/algolia",
		},
		{
			name:       "nil secret string",
			env:        "production",
			client:     &mockSecretsManagerClient{},
			expectPath: "production/algolia",
			expectErr:  "secret at path production/algolia has no string value",
		},
		{
			name:       "invalid JSON",
			env:        "production",
			client:     &mockSecretsManagerClient{secretValue: aws.String(`{"app_id":"test-app-id","api_key":}`)},
			expectPath: "production/algolia",
			expectErr:  "failed to unmarshal secret JSON at path production/algolia",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			secrets, err := AWSSecrets(context.Background(), tt.client, tt.env)()

			if tt.client.requested != tt.expectPath {
				t.Errorf("Expected secret %q to be requested, got %q", tt.expectPath, tt.client.requested)
			}

			if tt.expectErr != "" {
				if err == nil {
					t.Fatal("Expected error, got nil")
				}
				if !strings.Contains(err.Error(), tt.expectErr) {
					t.Errorf("Expected error to contain %q, got %q", tt.expectErr, err.Error())
				}
				return
			}

			if err != nil {
				t.Fatalf("Expected no error, got %v", err)
			}
			if secrets.AppID != tt.expectAppID {
				t.Errorf("Expected AppID %q, got %q", tt.expectAppID, secrets.AppID)
			}
			if secrets.APIKey != tt.expectKey {
				t.Errorf("Expected APIKey %q, got %q", tt.expectKey, secrets.APIKey)
			}
		})
	}
}

func TestAWSSecretsFromARN(t *testing.T) {
	arn := "arn:aws:secretsmanager:us-east-1:123456789012:secret:algolia-AbCdEf"

	client := &mockSecretsManagerClient{
		secretValue: aws.String(`{"app_id":"arn-app","api_key":"arn-key"}`),
	}

	secrets, err := AWSSecretsFromARN(context.Background(), client, arn)()
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	if client.requested != arn {
		t.Errorf("Expected secret %q to be requested, got %q", arn, client.requested)
	}
	if secrets.AppID != "arn-app" || secrets.APIKey != "arn-key" {
		t.Errorf("Unexpected secrets: %+v", secrets)
	}

	client = &mockSecretsManagerClient{err: errors.New("denied")}
	_, err = AWSSecretsFromARN(context.Background(), client, arn)()
	if err == nil || !strings.Contains(err.Error(), "with ARN "+arn) {
		t.Errorf("Expected error naming the ARN, got %v", err)
	}
}
