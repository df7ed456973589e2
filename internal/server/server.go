// Package server exposes the projection engine over HTTP.
package server

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"mime"
	"net/http"
	"strings"
	"time"

	"github.com/goccy/go-json"
	"go.uber.org/zap"
	"gopkg.in/yaml.v3"

	"github.com/planwise/retirecast/internal/config"
	"github.com/planwise/retirecast/internal/projection"
	"github.com/planwise/retirecast/pkg/constants"
	"github.com/planwise/retirecast/pkg/output"
	"github.com/planwise/retirecast/pkg/quotes"
)

type handler struct {
	logger        *zap.Logger
	maxUploadSize int64
	version       string
	prices        quotes.PriceMap
}

// NewHandler constructs the HTTP handler that serves the projection API.
// prices may be nil; investments then project from their stored prices.
func NewHandler(logger *zap.Logger, maxUploadSize int64, version string, prices quotes.PriceMap) http.Handler {
	if logger == nil {
		logger = zap.NewNop()
	}

	if maxUploadSize <= 0 {
		maxUploadSize = constants.DefaultMaxUploadSizeBytes
	}

	trimmedVersion := strings.TrimSpace(version)
	if trimmedVersion == "" {
		trimmedVersion = "dev"
	}

	h := &handler{logger: logger, maxUploadSize: maxUploadSize, version: trimmedVersion, prices: prices}

	mux := http.NewServeMux()

	// Projection API endpoint: multipart YAML upload or JSON profile body.
	mux.HandleFunc("/api/projection", h.handleProjection)

	// Version endpoint for client metadata.
	mux.HandleFunc("/api/version", h.handleVersion)

	return mux
}

type projectionResponse struct {
	Years    []projectionRow `json:"years"`
	CSV      string          `json:"csv"`
	Warnings []string        `json:"warnings,omitempty"`
	Duration string          `json:"duration"`
}

type projectionRow struct {
	Year      int            `json:"year"`
	Age       int            `json:"age"`
	NetWorth  float64        `json:"netWorth"`
	Dividends float64        `json:"dividends"`
	Income    float64        `json:"income"`
	Expenses  float64        `json:"expenses"`
	Tax       float64        `json:"tax"`
	Sales     float64        `json:"sales"`
	Gains     float64        `json:"gains"`
	Delta     float64        `json:"delta"`
	Accounts  []accountValue `json:"accounts"`
}

type accountValue struct {
	Name  string  `json:"name"`
	Value float64 `json:"value"`
}

func (h *handler) handleProjection(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, http.StatusText(http.StatusMethodNotAllowed), http.StatusMethodNotAllowed)
		return
	}

	start := time.Now()
	if h.maxUploadSize > 0 {
		r.Body = http.MaxBytesReader(w, r.Body, h.maxUploadSize)
	}

	mediaType, _, _ := mime.ParseMediaType(r.Header.Get("Content-Type"))
	var profileBytes []byte
	var err error
	switch mediaType {
	case "application/json":
		profileBytes, err = h.readJSONProfile(r)
	default:
		profileBytes, err = h.readUploadedProfile(r)
	}
	if err != nil {
		var maxBytesErr *http.MaxBytesError
		if errors.As(err, &maxBytesErr) {
			h.respondError(w, http.StatusRequestEntityTooLarge,
				fmt.Sprintf("upload exceeds limit of %d bytes", h.maxUploadSize))
			return
		}
		h.respondError(w, http.StatusBadRequest, err.Error())
		return
	}

	h.runProjection(w, profileBytes, start)
}

// readUploadedProfile extracts the YAML profile from a multipart upload.
func (h *handler) readUploadedProfile(r *http.Request) ([]byte, error) {
	if err := r.ParseMultipartForm(h.maxUploadSize); err != nil {
		var maxBytesErr *http.MaxBytesError
		if errors.As(err, &maxBytesErr) {
			return nil, err
		}
		return nil, fmt.Errorf("failed to parse upload: %w", err)
	}

	file, _, err := r.FormFile("file")
	if err != nil {
		return nil, errors.New("missing profile file")
	}
	defer func() {
		if closeErr := file.Close(); closeErr != nil {
			h.logger.Warn("failed to close uploaded file",
				zap.String("op", "server.handleProjection"),
				zap.Error(closeErr),
			)
		}
	}()

	var buf bytes.Buffer
	if _, err := io.Copy(&buf, file); err != nil {
		return nil, fmt.Errorf("failed to read profile: %w", err)
	}
	return buf.Bytes(), nil
}

// readJSONProfile converts a JSON profile body to YAML so both request
// forms flow through the same loader.
func (h *handler) readJSONProfile(r *http.Request) ([]byte, error) {
	var payload map[string]interface{}
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		return nil, fmt.Errorf("failed to decode profile: %w", err)
	}
	if payload == nil {
		payload = make(map[string]interface{})
	}

	profileBytes, err := yaml.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("failed to encode profile: %w", err)
	}
	return profileBytes, nil
}

func (h *handler) handleVersion(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, http.StatusText(http.StatusMethodNotAllowed), http.StatusMethodNotAllowed)
		return
	}

	h.writeJSON(w, http.StatusOK, map[string]string{
		"version": h.version,
	})
}

func (h *handler) runProjection(w http.ResponseWriter, profileBytes []byte, start time.Time) {
	profile, err := config.LoadProfileFromReader(bytes.NewReader(profileBytes))
	if err != nil {
		h.respondError(w, http.StatusBadRequest, err.Error())
		return
	}

	if err := profile.Validate(); err != nil {
		h.respondError(w, http.StatusBadRequest, err.Error())
		return
	}
	warnings := profile.ValidateProfile(time.Now().Year())

	snapshots, err := projection.Project(h.logger, *profile, h.prices)
	if err != nil {
		h.respondError(w, http.StatusInternalServerError, fmt.Sprintf("failed to compute projection: %v", err))
		return
	}

	elapsed := time.Since(start)

	response := projectionResponse{
		Years:    buildRows(snapshots),
		CSV:      output.CsvString(snapshots),
		Warnings: warnings,
		Duration: elapsed.String(),
	}

	h.logger.Info("projection computed",
		zap.String("op", "server.handleProjection"),
		zap.Int("years", len(response.Years)),
		zap.Duration("duration", elapsed),
	)

	h.writeJSON(w, http.StatusOK, response)
}

func buildRows(snapshots []projection.Snapshot) []projectionRow {
	rows := make([]projectionRow, 0, len(snapshots))
	for _, snap := range snapshots {
		row := projectionRow{
			Year:      snap.Year,
			Age:       snap.Age,
			NetWorth:  snap.Assets,
			Dividends: snap.Dividends,
			Income:    snap.Income,
			Expenses:  snap.Expense,
			Tax:       snap.Tax,
			Sales:     snap.Sales,
			Gains:     snap.Gains,
			Delta:     snap.Delta,
		}
		for _, account := range snap.Accounts {
			row.Accounts = append(row.Accounts, accountValue{Name: account.Name, Value: account.Value})
		}
		rows = append(rows, row)
	}
	return rows
}

func (h *handler) respondError(w http.ResponseWriter, status int, msg string) {
	h.logger.Error("projection request failed",
		zap.String("op", "server.handleProjection"),
		zap.Int("status", status),
		zap.String("error", msg),
	)

	h.writeJSON(w, status, map[string]string{"error": msg})
}

func (h *handler) writeJSON(w http.ResponseWriter, status int, payload interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		h.logger.Error("failed to write JSON response", zap.Error(err))
	}
}
