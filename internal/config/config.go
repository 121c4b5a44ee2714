package config

import (
	"crypto/rsa"
	"encoding/base64"
	"encoding/pem"
	"os"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/launchdarkly/go-sdk-common/v3/ldcontext"
	ld "github.com/launchdarkly/go-server-sdk/v7"
	"github.com/poofware/property-service/internal/utils"
)

type Config struct {
	AppName string
	AppPort string
	AppUrl  string

	// Database
	DBUrl string

	// External services
	TwilioAccountSID string
	TwilioAuthToken  string
	SendGridAPIKey   string

	// Auth
	RSAPrivateKey *rsa.PrivateKey
	RSAPublicKey  *rsa.PublicKey

	// LaunchDarkly flags
	LDFlag_TwilioFromPhone      string
	LDFlag_SendgridFromEmail    string
	LDFlag_SendgridSandboxMode  bool
	LDFlag_SeedDbWithTestData   bool
	LDFlag_CORSHighSecurity     bool
	LDFlag_RentReminderLeadDays int
}

const LDConnectionTimeout = 5 * time.Second

// build-time overrides
var (
	AppName             = "property-service"
	LDServerContextKey  string
	LDServerContextKind string
)

func requireEnv(name string) string {
	val := os.Getenv(name)
	if val == "" {
		utils.Logger.Fatalf("%s env var is missing", name)
	}
	return val
}

func LoadConfig() *Config {
	utils.Logger.Info("Loading config for app: ", AppName)

	appUrl := requireEnv("APP_URL")
	appPort := requireEnv("APP_PORT")
	dbURL := requireEnv("DB_URL")

	privB64 := requireEnv("RSA_PRIVATE_KEY_BASE64")
	privPEM, _ := base64.StdEncoding.DecodeString(privB64)
	if block, _ := pem.Decode(privPEM); block == nil {
		utils.Logger.Fatal("Failed to decode PEM block for private key")
	}
	privKey, err := jwt.ParseRSAPrivateKeyFromPEM(privPEM)
	if err != nil {
		utils.Logger.WithError(err).Fatal("Failed to parse RSA private key")
	}

	pubB64 := requireEnv("RSA_PUBLIC_KEY_BASE64")
	pubPEM, _ := base64.StdEncoding.DecodeString(pubB64)
	if block, _ := pem.Decode(pubPEM); block == nil {
		utils.Logger.Fatal("Failed to decode PEM block for public key")
	}
	pubKey, err := jwt.ParseRSAPublicKeyFromPEM(pubPEM)
	if err != nil {
		utils.Logger.WithError(err).Fatal("Failed to parse RSA public key")
	}

	twilioSID := requireEnv("TWILIO_ACCOUNT_SID")
	twilioToken := requireEnv("TWILIO_AUTH_TOKEN")
	sgAPIKey := requireEnv("SENDGRID_API_KEY")
	ldSDKKey := requireEnv("LD_SDK_KEY")

	ldClient, err := ld.MakeClient(ldSDKKey, LDConnectionTimeout)
	if err != nil {
		utils.Logger.WithError(err).Fatal("Failed to create LaunchDarkly client")
	}
	if !ldClient.Initialized() {
		ldClient.Close()
		utils.Logger.Fatal("LaunchDarkly client failed to initialize")
	}
	defer ldClient.Close()

	contextKind := LDServerContextKind
	if contextKind == "" {
		contextKind = "service"
	}
	contextKey := LDServerContextKey
	if contextKey == "" {
		contextKey = AppName
	}
	ctx := ldcontext.NewWithKind(ldcontext.Kind(contextKind), contextKey)

	// Twilio from phone
	twilioFromFlag, err := ldClient.StringVariation("twilio_from_phone", ctx, "")
	if err != nil {
		utils.Logger.WithError(err).Fatal("Error retrieving twilio_from_phone flag")
	}
	utils.Logger.Debugf("twilio_from_phone flag: %s", twilioFromFlag)
	if twilioFromFlag == "" {
		utils.Logger.Warn("twilio_from_phone flag is empty, defaulting to +10005550006")
		twilioFromFlag = "+10005550006"
	}

	// SendGrid from email
	sgFromFlag, err := ldClient.StringVariation("sendgrid_from_email", ctx, "")
	if err != nil {
		utils.Logger.WithError(err).Fatal("Error retrieving sendgrid_from_email flag")
	}
	utils.Logger.Debugf("sendgrid_from_email flag: %s", sgFromFlag)
	if sgFromFlag == "" {
		utils.Logger.Warn("sendgrid_from_email flag is empty, defaulting to no-reply@example.com")
		sgFromFlag = "no-reply@example.com"
	}

	sgSandboxFlag, err := ldClient.BoolVariation("sendgrid_sandbox_mode", ctx, false)
	if err != nil {
		utils.Logger.WithError(err).Fatal("Error retrieving sendgrid_sandbox_mode flag")
	}
	utils.Logger.Debugf("sendgrid_sandbox_mode flag: %t", sgSandboxFlag)

	seedDbWithTestDataFlag, err := ldClient.BoolVariation("seed_db_with_test_data", ctx, false)
	if err != nil {
		utils.Logger.WithError(err).Fatal("Error retrieving seed_db_with_test_data flag")
	}
	utils.Logger.Debugf("seed_db_with_test_data flag: %t", seedDbWithTestDataFlag)

	corsHighSecurityFlag, err := ldClient.BoolVariation("cors_high_security", ctx, false)
	if err != nil {
		utils.Logger.WithError(err).Fatal("Error retrieving cors_high_security flag")
	}
	utils.Logger.Debugf("cors_high_security flag: %t", corsHighSecurityFlag)

	leadDaysFlag, err := ldClient.IntVariation("rent_reminder_lead_days", ctx, 3)
	if err != nil {
		utils.Logger.WithError(err).Fatal("Error retrieving rent_reminder_lead_days flag")
	}
	utils.Logger.Debugf("rent_reminder_lead_days flag: %d", leadDaysFlag)
	if leadDaysFlag < 0 {
		utils.Logger.Warn("rent_reminder_lead_days flag is negative, defaulting to 3")
		leadDaysFlag = 3
	}

	return &Config{
		AppName:                     AppName,
		AppPort:                     appPort,
		AppUrl:                      appUrl,
		DBUrl:                       dbURL,
		TwilioAccountSID:            twilioSID,
		TwilioAuthToken:             twilioToken,
		SendGridAPIKey:              sgAPIKey,
		RSAPrivateKey:               privKey,
		RSAPublicKey:                pubKey,
		LDFlag_TwilioFromPhone:      twilioFromFlag,
		LDFlag_SendgridFromEmail:    sgFromFlag,
		LDFlag_SendgridSandboxMode:  sgSandboxFlag,
		LDFlag_SeedDbWithTestData:   seedDbWithTestDataFlag,
		LDFlag_CORSHighSecurity:     corsHighSecurityFlag,
		LDFlag_RentReminderLeadDays: leadDaysFlag,
	}
}
