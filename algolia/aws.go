package algolia

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/secretsmanager"
)

// SecretsManagerClient defines the interface for AWS Secrets Manager operations.
type SecretsManagerClient interface {
	GetSecretValue(ctx context.Context, params *secretsmanager.GetSecretValueInput, optFns ...func(*secretsmanager.Options)) (*secretsmanager.GetSecretValueOutput, error)
}

// AWSSecrets reads Algolia credentials from the secret "{env}/algolia",
// a JSON object with app_id and api_key fields.
func AWSSecrets(ctx context.Context, client SecretsManagerClient, env string) FetchSecrets {
	secretPath := fmt.Sprintf("%s/algolia", env)
	return func() (Secrets, error) {
		return readSecret(ctx, client, secretPath, "at path "+secretPath)
	}
}

// AWSSecretsFromARN reads Algolia credentials from the secret with the
// given ARN. The secret has the same shape as for AWSSecrets.
func AWSSecretsFromARN(ctx context.Context, client SecretsManagerClient, secretArn string) FetchSecrets {
	return func() (Secrets, error) {
		return readSecret(ctx, client, secretArn, "with ARN "+secretArn)
	}
}

func readSecret(ctx context.Context, client SecretsManagerClient, secretID, where string) (Secrets, error) {
	result, err := client.GetSecretValue(ctx, &secretsmanager.GetSecretValueInput{
		SecretId: aws.String(secretID),
	})
	if err != nil {
		return Secrets{}, fmt.Errorf("failed to get secret from AWS Secrets Manager %s: %w", where, err)
	}

	if result.SecretString == nil {
		return Secrets{}, fmt.Errorf("secret %s has no string value", where)
	}

	var secrets Secrets
	if err := json.Unmarshal([]byte(aws.ToString(result.SecretString)), &secrets); err != nil {
		return Secrets{}, fmt.Errorf("failed to unmarshal secret JSON %s: %w", where, err)
	}

	return secrets, nil
}
