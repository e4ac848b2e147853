package services

import (
	"errors"
	"fmt"
	"time"

	"github.com/chartgen/chartgen-api/internal/core/dataset"
	"github.com/chartgen/chartgen-api/internal/modules/charts/models"
	"github.com/chartgen/chartgen-api/internal/modules/charts/repositories"
	"github.com/chartgen/chartgen-api/internal/shared/utils"
)

// ErrInvalidData marks an upload that parsed but fails the structural rules.
var ErrInvalidData = errors.New("invalid data")

const sampleValuesPerColumn = 5

// DataService handles dataset upload, profiling and session lifecycle.
type DataService struct {
	sessions repositories.SessionRepo
	minRows  int
	maxRows  int
}

func NewDataService(sessions repositories.SessionRepo, minRows, maxRows int) *DataService {
	return &DataService{
		sessions: sessions,
		minRows:  minRows,
		maxRows:  maxRows,
	}
}

// Upload parses, validates and profiles a dataset, then stores it under the
// session id. Re-uploading to an existing id replaces the stored dataset.
func (s *DataService) Upload(sessionID, filename string, content []byte, format string) (*models.UploadResponse, error) {
	df, err := dataset.Load(content, format)
	if err != nil {
		return nil, err
	}

	if ok, message := dataset.Validate(df, s.minRows, s.maxRows); !ok {
		return nil, fmt.Errorf("%w: %s", ErrInvalidData, message)
	}

	meta := dataset.Profile(df)
	s.sessions.Save(&repositories.Session{
		ID:        sessionID,
		Filename:  filename,
		Frame:     df,
		Metadata:  meta,
		CreatedAt: time.Now(),
	})

	utils.LogInfo("dataset uploaded", map[string]interface{}{
		"session_id": sessionID,
		"filename":   filename,
		"rows":       meta.RowCount,
		"columns":    meta.ColumnCount,
	})

	return &models.UploadResponse{
		SessionID:   sessionID,
		Filename:    filename,
		RowCount:    meta.RowCount,
		ColumnCount: meta.ColumnCount,
		Columns:     meta.Columns,
		Metadata:    meta,
		Message:     "Data uploaded and validated successfully",
	}, nil
}

// GetSession returns the session summary with per-column sample values.
func (s *DataService) GetSession(sessionID string) (*models.SessionInfoResponse, error) {
	session, err := s.sessions.Get(sessionID)
	if err != nil {
		return nil, err
	}

	samples := make(map[string][]string, len(session.Metadata.Columns))
	for _, column := range session.Metadata.Columns {
		samples[column] = dataset.ColumnSample(session.Frame, column, sampleValuesPerColumn)
	}

	return &models.SessionInfoResponse{
		SessionID: session.ID,
		Filename:  session.Filename,
		CreatedAt: session.CreatedAt.Format(time.RFC3339),
		RowCount:  session.Metadata.RowCount,
		Columns:   session.Metadata.Columns,
		Metadata:  session.Metadata,
		Samples:   samples,
	}, nil
}

func (s *DataService) DeleteSession(sessionID string) error {
	return s.sessions.Delete(sessionID)
}
