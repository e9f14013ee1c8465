package configs

import (
	"fmt"
	"log"
	"os"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	Port      string
	MongoURI  string
	DBName    string
	JWTSecret string

	AdminId       string
	AdminUsername string
	AdminPassword string

	ReferralBonus          float64
	MinimumWithdrawBalance float64

	LeadershipSweepEvery  time.Duration
	ReferralSweepEvery    time.Duration
	WalletSweepEvery      time.Duration
	AuditExportEvery      time.Duration
	SweepOperationTimeout time.Duration

	SMSAPIURL   string
	SMSAPIKey   string
	SMSSenderID string
	AdminPhone  string

	GatewayBaseURL       string
	GatewayStoreID       string
	GatewayStorePassword string
	PaymentSuccessURL    string
	PaymentFailURL       string
	PaymentCancelURL     string
	PaymentIPNURL        string
}

func LoadConfig() Config {
	err := godotenv.Load()
	if err != nil {
		log.Println("No .env file found, using environment variables")
	}

	return Config{
		Port:      os.Getenv("PORT"),
		MongoURI:  os.Getenv("MONGO_URI"),
		DBName:    os.Getenv("DB_NAME"),
		JWTSecret: os.Getenv("JWT_SECRET"),

		AdminId:       os.Getenv("ADMIN_USER_ID"),
		AdminUsername: os.Getenv("ADMIN_USER_NAME"),
		AdminPassword: os.Getenv("ADMIN_USER_PASSWORD"),

		ReferralBonus:          floatEnv("REFERRAL_BONUS", 120),
		MinimumWithdrawBalance: floatEnv("MINIMUM_WITHDRAW_BALANCE", 13),

		LeadershipSweepEvery:  durationEnv("LEADERSHIP_SWEEP_EVERY", 10*time.Second),
		ReferralSweepEvery:    durationEnv("REFERRAL_SWEEP_EVERY", 10*time.Second),
		WalletSweepEvery:      durationEnv("WALLET_SWEEP_EVERY", time.Minute),
		AuditExportEvery:      durationEnv("AUDIT_EXPORT_EVERY", 30*time.Second),
		SweepOperationTimeout: durationEnv("SWEEP_OPERATION_TIMEOUT", 2*time.Minute),

		SMSAPIURL:   os.Getenv("SMS_API_URL"),
		SMSAPIKey:   os.Getenv("SMS_API_KEY"),
		SMSSenderID: os.Getenv("SMS_SENDER_ID"),
		AdminPhone:  os.Getenv("ADMIN_PHONE"),

		GatewayBaseURL:       os.Getenv("GATEWAY_BASE_URL"),
		GatewayStoreID:       os.Getenv("GATEWAY_STORE_ID"),
		GatewayStorePassword: os.Getenv("GATEWAY_STORE_PASSWORD"),
		PaymentSuccessURL:    os.Getenv("PAYMENT_SUCCESS_URL"),
		PaymentFailURL:       os.Getenv("PAYMENT_FAIL_URL"),
		PaymentCancelURL:     os.Getenv("PAYMENT_CANCEL_URL"),
		PaymentIPNURL:        os.Getenv("PAYMENT_IPN_URL"),
	}
}

func floatEnv(key string, fallback float64) float64 {
	val := os.Getenv(key)
	if val == "" {
		return fallback
	}
	var parsed float64
	if _, err := fmt.Sscanf(val, "%f", &parsed); err != nil {
		log.Fatalf("Invalid %s: %v", key, err)
	}
	return parsed
}

func durationEnv(key string, fallback time.Duration) time.Duration {
	val := os.Getenv(key)
	if val == "" {
		return fallback
	}
	parsed, err := time.ParseDuration(val)
	if err != nil {
		log.Fatalf("Invalid %s: %v", key, err)
	}
	return parsed
}
