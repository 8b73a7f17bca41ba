package config

import (
	"context"
	"errors"
	"fmt"
	"log"
	"os"
	"strings"
	"sync"

	"golang.org/x/oauth2/google"
	"google.golang.org/api/option"
	"google.golang.org/api/sheets/v4"
)

// Scopes granted to the service identity: read/write on the spreadsheet and
// its hosting Drive.
var SheetsScopes = []string{
	"https://www.googleapis.com/auth/spreadsheets",
	"https://www.googleapis.com/auth/drive",
}

var (
	sheetsService   *sheets.Service
	sheetsServiceMu sync.Mutex
)

// GetSheetsService returns the shared Sheets client, creating it on first use.
// Credentials come from GOOGLE_SERVICE_ACCOUNT_JSON when set, otherwise from
// Application Default Credentials (Cloud Run service account or
// GOOGLE_APPLICATION_CREDENTIALS).
func GetSheetsService(ctx context.Context) (*sheets.Service, error) {
	sheetsServiceMu.Lock()
	defer sheetsServiceMu.Unlock()
	if sheetsService != nil {
		return sheetsService, nil
	}

	opts, err := sheetsClientOptions(ctx)
	if err != nil {
		return nil, err
	}
	svc, err := sheets.NewService(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("create sheets service: %w", err)
	}
	sheetsService = svc
	log.Printf("sheets client ready")
	return sheetsService, nil
}

func sheetsClientOptions(ctx context.Context) ([]option.ClientOption, error) {
	if credJSON := strings.TrimSpace(os.Getenv("GOOGLE_SERVICE_ACCOUNT_JSON")); credJSON != "" {
		creds, err := google.CredentialsFromJSON(ctx, []byte(credJSON), SheetsScopes...)
		if err != nil {
			return nil, fmt.Errorf("invalid GOOGLE_SERVICE_ACCOUNT_JSON: %w", err)
		}
		return []option.ClientOption{option.WithCredentials(creds)}, nil
	}

	creds, err := google.FindDefaultCredentials(ctx, SheetsScopes...)
	if err != nil {
		return nil, errors.New("no sheets credentials: set GOOGLE_SERVICE_ACCOUNT_JSON or GOOGLE_APPLICATION_CREDENTIALS: " + err.Error())
	}
	return []option.ClientOption{option.WithCredentials(creds)}, nil
}
