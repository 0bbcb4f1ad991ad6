// Package profile implements the client-side profile data service: CRUD over
// per-user profile records in the local record store, plus the profile photo
// upload.
package profile

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/gabriel-vasile/mimetype"

	"github.com/fitlifeapp/fitlife/internal/client/api"
	"github.com/fitlifeapp/fitlife/internal/client/models"
	"github.com/fitlifeapp/fitlife/internal/client/store"
	"github.com/fitlifeapp/fitlife/internal/common"
	"github.com/fitlifeapp/fitlife/internal/logging"
	"github.com/fitlifeapp/fitlife/internal/netx"
)

// uploadChunkSize controls how often the progress callback fires while the
// photo file is read.
const uploadChunkSize = 32 * 1024

// Service provides profile record operations. All public methods return a
// tagged result and never propagate internal errors to the caller.
//
// apiClient is optional: when set and the server offers media storage, photo
// uploads go to a presigned object-storage URL; otherwise the photo is kept
// inline as a data URL, which simulates an upload against a purely local
// installation.
type Service struct {
	store store.Store
	api   api.Client
	log   logging.Logger
}

// NewService constructs a profile Service.
func NewService(st store.Store, apiClient api.Client, log logging.Logger) *Service {
	return &Service{store: st, api: apiClient, log: log}
}

// GetUserData returns the durable profile record for userID, or a failure
// result with "User data not found" when no record exists.
func (s *Service) GetUserData(ctx context.Context, userID string) models.Result[*models.ProfileRecord] {
	raw, err := s.store.Get(ctx, store.UserKey(userID))
	if err != nil {
		if !errors.Is(err, common.ErrorNotFound) {
			s.log.Error(ctx, "error getting user data", "user_id", userID, "error", err)
		}
		return models.Fail[*models.ProfileRecord]("User data not found")
	}

	var rec models.ProfileRecord
	if err := json.Unmarshal(raw, &rec); err != nil {
		s.log.Error(ctx, "error decoding user data", "user_id", userID, "error", err)
		return models.Fail[*models.ProfileRecord]("User data not found")
	}
	return models.Ok(&rec)
}

// UpdateUserData shallow-merges partial into the profile record for userID.
func (s *Service) UpdateUserData(ctx context.Context, userID string, partial map[string]any) models.Result[struct{}] {
	if err := s.store.Merge(ctx, store.UserKey(userID), partial); err != nil {
		s.log.Error(ctx, "error updating user data", "user_id", userID, "error", err)
		return models.Fail[struct{}]("Failed to update user data")
	}
	return models.Ok(struct{}{})
}

// UploadProfilePhoto reads the photo file at path, invoking onProgress with a
// non-decreasing percentage from 0 to 100 as bytes are read, then stores the
// resulting photo reference in the profile record. The returned result
// carries the stored photo URL.
//
// The service imposes no MIME or size constraint; the calling UI is expected
// to pre-screen files.
func (s *Service) UploadProfilePhoto(ctx context.Context, userID, path string, onProgress func(percent int)) models.Result[string] {
	data, err := s.readWithProgress(path, onProgress)
	if err != nil {
		s.log.Error(ctx, "error reading photo file", "user_id", userID, "path", path, "error", err)
		return models.Fail[string]("Error reading file")
	}

	contentType := mimetype.Detect(data).String()

	photoURL, err := s.storePhoto(ctx, contentType, data)
	if err != nil {
		s.log.Error(ctx, "error uploading photo", "user_id", userID, "error", err)
		return models.Fail[string]("Failed to upload photo")
	}

	if res := s.UpdateUserData(ctx, userID, map[string]any{"photoURL": photoURL}); !res.Success {
		return models.Fail[string](res.Error)
	}
	return models.Ok(photoURL)
}

// storePhoto puts the photo bytes behind a URL: a presigned object-storage
// upload when the server offers one, an inline data URL otherwise.
func (s *Service) storePhoto(ctx context.Context, contentType string, data []byte) (string, error) {
	if s.api != nil {
		presign, err := s.api.PhotoUploadURL(ctx, contentType)
		if err == nil {
			if err := netx.UploadToPresignedURL(ctx, presign.UploadURL, contentType, data); err != nil {
				return "", err
			}
			return presign.PhotoURL, nil
		}
		s.log.Warn(ctx, "media storage unavailable, keeping photo inline", "error", err)
	}

	return fmt.Sprintf("data:%s;base64,%s", contentType, base64.StdEncoding.EncodeToString(data)), nil
}

func (s *Service) readWithProgress(path string, onProgress func(percent int)) ([]byte, error) {
	fi, err := os.Stat(path)
	if err != nil {
		return nil, err
	}
	total := fi.Size()

	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	report := func(p int) {
		if onProgress != nil {
			onProgress(p)
		}
	}
	report(0)

	data := make([]byte, 0, total)
	buf := make([]byte, uploadChunkSize)
	for {
		n, err := f.Read(buf)
		if n > 0 {
			data = append(data, buf[:n]...)
			if total > 0 {
				report(int(int64(len(data)) * 100 / total))
			}
		}
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, err
		}
	}
	report(100)

	return data, nil
}
