package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
	"github.com/mmdatafocus/drcm_backend/utils"
)

const (
	defaultSheetId      = "1mDeXDyKTZjNmRK8TnSByKbm3ny_RFhT4Rvjpqwekvjg"
	defaultAccessYear   = "2025"
	defaultCacheSeconds = 40
)

// Settings is the process configuration, read once from the environment.
//
// Env:
// - SHEET_ID, SHEET_INDEX (first worksheet by default)
// - SHEET_VALUE_INPUT_OPTION=RAW|USER_ENTERED
// - CACHE_TTL_SECONDS (default 40)
// - ACCESS_YEAR (suffix of every department secret)
// - APP_TIMEZONE (IANA name; empty uses the host zone)
// - AUDIT_LOG_SHEET=false disables the "Log" sheet audit
// - PUBSUB_AUDIT_TOPIC enables the Pub/Sub audit fan-out
// - DB_HOST enables the MySQL audit mirror
// - REDIS_ADDRESS switches the snapshot cache to Redis
type Settings struct {
	SheetId          string `validate:"required"`
	SheetIndex       int    `validate:"gte=0"`
	ValueInputOption string `validate:"oneof=RAW USER_ENTERED"`
	CacheTTL         time.Duration
	AccessYear       string         `validate:"len=4,numeric"`
	Location         *time.Location `validate:"required"`
	AuditLogSheet    bool
	PubSubAuditTopic string
	AuditMirrorDB    bool
	RedisAddress     string
}

func init() {
	// Load env from .env
	godotenv.Load()
}

func LoadSettings() (*Settings, error) {
	loc := time.Local
	if tz := strings.TrimSpace(os.Getenv("APP_TIMEZONE")); tz != "" {
		l, err := time.LoadLocation(tz)
		if err != nil {
			return nil, fmt.Errorf("invalid APP_TIMEZONE %q: %w", tz, err)
		}
		loc = l
	}

	ttl := utils.EnvInt("CACHE_TTL_SECONDS", defaultCacheSeconds)
	if ttl < 0 {
		ttl = defaultCacheSeconds
	}

	s := &Settings{
		SheetId:          utils.EnvString("SHEET_ID", defaultSheetId),
		SheetIndex:       utils.EnvInt("SHEET_INDEX", 0),
		ValueInputOption: strings.ToUpper(utils.EnvString("SHEET_VALUE_INPUT_OPTION", "RAW")),
		CacheTTL:         time.Duration(ttl) * time.Second,
		AccessYear:       utils.EnvString("ACCESS_YEAR", defaultAccessYear),
		Location:         loc,
		AuditLogSheet:    utils.EnvBool("AUDIT_LOG_SHEET", true),
		PubSubAuditTopic: strings.TrimSpace(os.Getenv("PUBSUB_AUDIT_TOPIC")),
		AuditMirrorDB:    strings.TrimSpace(os.Getenv("DB_HOST")) != "",
		RedisAddress:     strings.TrimSpace(os.Getenv("REDIS_ADDRESS")),
	}

	if err := validator.New().Struct(s); err != nil {
		return nil, fmt.Errorf("invalid settings: %w", err)
	}
	return s, nil
}
