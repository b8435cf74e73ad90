package secrets

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/zalando/go-keyring"

	"github.com/diegoamorenag/JobPersonilisePortal/internal/config"
)

const (
	// Service groups this app's secrets in the OS keychain.
	KeyringService = "jobportal"
)

// GetIMAPPassword resolves the mailbox password: keychain first, then the
// JOBPORTAL_IMAP_PASSWORD env var for headless deployments.
func GetIMAPPassword(keyringAccount string) (string, error) {
	if strings.TrimSpace(keyringAccount) != "" {
		pw, err := keyring.Get(KeyringService, keyringAccount)
		if err == nil && strings.TrimSpace(pw) != "" {
			return pw, nil
		}
	}
	if pw := strings.TrimSpace(os.Getenv("JOBPORTAL_IMAP_PASSWORD")); pw != "" {
		return pw, nil
	}
	return "", errors.New("IMAP password not found (set it in keychain or via JOBPORTAL_IMAP_PASSWORD)")
}

func SetIMAPPassword(keyringAccount string, password string) error {
	if strings.TrimSpace(keyringAccount) == "" {
		return errors.New("keyring account name is empty")
	}
	if strings.TrimSpace(password) == "" {
		return errors.New("password is empty")
	}
	return keyring.Set(KeyringService, keyringAccount, password)
}

func DeleteIMAPPassword(keyringAccount string) error {
	if strings.TrimSpace(keyringAccount) == "" {
		return errors.New("keyring account name is empty")
	}
	return keyring.Delete(KeyringService, keyringAccount)
}

func IMAPKeyringAccount(cfg config.Config) string {
	return fmt.Sprintf(
		"jobportal:imap:%s@%s",
		cfg.Email.Username,
		cfg.Email.IMAPHost,
	)
}

// GetAggregatorAPIKey resolves the search aggregator API key: keychain
// first, then the JOBPORTAL_SERPAPI_KEY env var.
func GetAggregatorAPIKey() (string, error) {
	pw, err := keyring.Get(KeyringService, "jobportal:serpapi")
	if err == nil && strings.TrimSpace(pw) != "" {
		return pw, nil
	}
	if key := strings.TrimSpace(os.Getenv("JOBPORTAL_SERPAPI_KEY")); key != "" {
		return key, nil
	}
	return "", errors.New("aggregator API key not found (set it in keychain or via JOBPORTAL_SERPAPI_KEY)")
}

func SetAggregatorAPIKey(key string) error {
	if strings.TrimSpace(key) == "" {
		return errors.New("api key is empty")
	}
	return keyring.Set(KeyringService, "jobportal:serpapi", key)
}
