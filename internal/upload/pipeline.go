// Package upload implements the file upload pipeline: bytes stream to
// the upload root, then the media item row and the party queue append
// are written as one transactional unit.
package upload

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/floodyboy/sync-party/internal/db"
	"github.com/floodyboy/sync-party/internal/logger"
	"github.com/floodyboy/sync-party/internal/media"
	"github.com/floodyboy/sync-party/internal/models"
)

// Pipeline errors
var (
	ErrTooLarge     = errors.New("upload exceeds size limit")
	ErrPartyMissing = errors.New("party not found for upload")
)

// Request describes one inbound upload
type Request struct {
	Owner    uuid.UUID
	Name     string
	PartyID  uuid.UUID
	FileName string
	Size     int64
	Body     io.Reader
}

// Pipeline streams uploads to disk and persists their metadata
type Pipeline struct {
	database  *db.DB
	repos     *db.Repositories
	uploadDir string
	maxBytes  int64
	progress  *tracker
}

// NewPipeline creates an upload pipeline rooted at uploadDir
func NewPipeline(database *db.DB, repos *db.Repositories, uploadDir string, maxBytes int64) *Pipeline {
	return &Pipeline{
		database:  database,
		repos:     repos,
		uploadDir: uploadDir,
		maxBytes:  maxBytes,
		progress:  newTracker(),
	}
}

// Status returns the current stage and byte percentage of an upload
func (p *Pipeline) Status(uploadID uuid.UUID) (Status, bool) {
	return p.progress.status(uploadID)
}

// Forget drops the progress record of a finished upload
func (p *Pipeline) Forget(uploadID uuid.UUID) {
	p.progress.forget(uploadID)
}

// Process runs the full pipeline for one upload: receiving,
// validating, persisting-metadata. The returned item is the inserted
// row. A validation failure leaves the already-written file on disk
// (cleanup debt); a failed party append rolls back the row insert and
// removes the file best-effort, so an item never lands unattached.
// Uploads are never retried here; the caller retries explicitly.
func (p *Pipeline) Process(ctx context.Context, req Request) (*models.MediaItem, error) {
	id := uuid.New()
	diskName := fmt.Sprintf("%s-%s", id.String(), sanitizeFileName(req.FileName))
	path := filepath.Join(p.uploadDir, diskName)

	p.progress.begin(id)

	received, err := p.receive(ctx, id, path, req)
	if err != nil {
		p.progress.setState(id, StateFailed)
		return nil, err
	}

	p.progress.setState(id, StateValidating)

	now := time.Now().UTC()
	item := &models.MediaItem{
		ID:        id,
		Type:      models.MediaTypeFile,
		Owner:     req.Owner,
		Name:      req.Name,
		URL:       diskName,
		CreatedAt: now,
		UpdatedAt: now,
	}

	if err := p.validate(req, received, item); err != nil {
		// The written file stays behind; flagged, not reclaimed
		logger.Log.Info().
			Err(err).
			Str("id", id.String()).
			Str("path", path).
			Msg("Upload failed validation, file left on disk")
		p.progress.setState(id, StateFailed)
		return nil, err
	}

	p.progress.setState(id, StatePersisting)

	err = p.database.WithTransaction(ctx, func(tx *gorm.DB) error {
		if err := db.CreateTx(tx, item); err != nil {
			return err
		}
		if err := db.AddItemTx(tx, req.PartyID, id); err != nil {
			if db.IsNotFound(err) {
				return ErrPartyMissing
			}
			return err
		}
		return nil
	})
	if err != nil {
		p.progress.setState(id, StateFailed)
		// Row insert rolled back; reclaim the file so neither side survives
		if rmErr := os.Remove(path); rmErr != nil && !os.IsNotExist(rmErr) {
			logger.Log.Error().
				Err(rmErr).
				Str("path", path).
				Msg("Failed to remove file after rolled back upload")
		}
		return nil, err
	}

	p.progress.setState(id, StateDone)

	logger.Log.Info().
		Str("id", id.String()).
		Str("party_id", req.PartyID.String()).
		Int64("bytes", received).
		Msg("Upload persisted")

	return item, nil
}

// receive streams the request body to path, honoring cancellation and
// the size limit. An aborted transfer leaves a partial file with no
// row behind it.
func (p *Pipeline) receive(ctx context.Context, id uuid.UUID, path string, req Request) (int64, error) {
	if err := os.MkdirAll(p.uploadDir, 0o755); err != nil {
		return 0, fmt.Errorf("failed to create upload root: %w", err)
	}

	// Fresh random id per upload makes collisions structurally impossible
	f, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0o644)
	if err != nil {
		return 0, fmt.Errorf("failed to create upload file: %w", err)
	}
	defer f.Close()

	src := &progressReader{
		ctx:      ctx,
		reader:   io.LimitReader(req.Body, p.maxBytes+1),
		uploadID: id,
		total:    req.Size,
		tracker:  p.progress,
	}

	received, err := io.Copy(f, src)
	if err != nil {
		return received, fmt.Errorf("failed to receive upload: %w", err)
	}
	if received > p.maxBytes {
		return received, ErrTooLarge
	}

	return received, nil
}

// validate checks the received file descriptor and the prospective row
func (p *Pipeline) validate(req Request, received int64, item *models.MediaItem) error {
	if req.FileName == "" {
		return fmt.Errorf("%w: missing file name", media.ErrValidation)
	}
	if received == 0 {
		return fmt.Errorf("%w: empty upload", media.ErrValidation)
	}
	if req.Size > 0 && received != req.Size {
		return fmt.Errorf("%w: received %d bytes, declared %d", media.ErrValidation, received, req.Size)
	}
	return media.Validate(item)
}

// progressReader reports transferred bytes and aborts on cancellation
type progressReader struct {
	ctx      context.Context
	reader   io.Reader
	uploadID uuid.UUID
	total    int64
	received int64
	tracker  *tracker
}

func (r *progressReader) Read(p []byte) (int, error) {
	if err := r.ctx.Err(); err != nil {
		return 0, err
	}

	n, err := r.reader.Read(p)
	if n > 0 {
		r.received += int64(n)
		r.tracker.reportBytes(r.uploadID, r.received, r.total)
	}
	return n, err
}

// sanitizeFileName reduces an uploaded filename to a bare base name
func sanitizeFileName(name string) string {
	name = filepath.Base(strings.ReplaceAll(name, "\\", "/"))
	if name == "." || name == string(filepath.Separator) || name == "" {
		return "upload"
	}
	return name
}
