package crm

import "os"

// CredentialsFromEnv builds Credentials from environment variables,
// tolerating the SF_/SFDC_/lowercase naming variants that accumulated in
// deployment configs over time.
func CredentialsFromEnv() Credentials {
	return Credentials{
		Username:      envFirst("SF_USERNAME", "SFDC_USERNAME", "sfdc_username"),
		Password:      envFirst("SF_PASSWORD", "SFDC_PASSWORD", "sfdc_password"),
		SecurityToken: envFirst("SF_SECURITY_TOKEN", "SFDC_SECURITY_TOKEN", "sfdc_security_token"),
		ClientID:      envFirst("SFDC_CLIENT_ID", "sfdc_client_id", "SF_CLIENT_ID", "CONSUMER_KEY"),
		ClientSecret:  envFirst("SFDC_CLIENT_SECRET", "sfdc_client_secret", "SF_CLIENT_SECRET", "CONSUMER_SECRET"),
		LoginURL:      envFirst("SF_LOGIN_URL", "SFDC_LOGIN_URL"),
	}
}

func envFirst(names ...string) string {
	for _, n := range names {
		if v := os.Getenv(n); v != "" {
			return v
		}
	}
	return ""
}
