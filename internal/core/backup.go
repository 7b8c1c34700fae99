package core

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"path"
	"time"

	"cubenote/internal/blob"
	"cubenote/pkg/domain"
)

// backupKeyPrefix namespaces backup documents inside the blob store.
const backupKeyPrefix = "backups"

// ExportSnapshot assembles the portable backup document for one user.
// Read-only; rejects with NotFound when the user has no profile.
func (s *Service) ExportSnapshot(ctx context.Context, userID string) (BackupDocument, error) {
	var doc BackupDocument
	_, err := s.observe(ctx, "export_backup", EntityProfile, userID, ActionCreate, func(ctx context.Context) (Result, error) {
		return Result{}, s.store.View(ctx, func(view RuleView) error {
			profile, ok := view.FindProfile(userID)
			if !ok {
				return domain.NotFoundError{Entity: EntityProfile, ID: userID}
			}
			doc = BackupDocument{
				Version:    domain.BackupVersion,
				ExportedAt: s.clock.Now().UTC().Format(time.RFC3339),
				Profile:    profile,
			}
			if inv, ok := view.FindInventory(userID); ok {
				doc.Inventory = inv
			}
			if rec, ok := view.FindDietRecord(userID); ok {
				doc.DietRecord = rec
			}
			return nil
		})
	})
	return doc, err
}

// ImportSnapshot validates the document and replaces the owning user's
// state wholesale. Missing inventory or diet record sections default to
// empty; a rejected document leaves the store untouched. The imported
// profile becomes the current user.
func (s *Service) ImportSnapshot(ctx context.Context, doc BackupDocument) (Result, error) {
	return s.observe(ctx, "import_backup", EntityProfile, doc.Profile.ID, ActionReplace, func(ctx context.Context) (Result, error) {
		if err := doc.Validate(); err != nil {
			return Result{}, err
		}
		return s.store.RunInTransaction(ctx, func(tx Transaction) error {
			if _, err := tx.PutProfile(doc.Profile); err != nil {
				return err
			}
			if err := tx.PutInventory(doc.Profile.ID, doc.Inventory.Clone()); err != nil {
				return err
			}
			if err := tx.PutDietRecord(doc.Profile.ID, doc.DietRecord.Clone()); err != nil {
				return err
			}
			tx.SetCurrentUserID(doc.Profile.ID)
			return nil
		})
	})
}

// WriteBackup exports the user's snapshot and stores it in the blob store
// under backups/<user>/<timestamp>.json. Returns the object key.
func (s *Service) WriteBackup(ctx context.Context, store blob.Store, userID string) (string, error) {
	doc, err := s.ExportSnapshot(ctx, userID)
	if err != nil {
		return "", err
	}
	payload, err := json.MarshalIndent(doc, "", "  ")
	if err != nil {
		return "", err
	}
	key := path.Join(backupKeyPrefix, userID, s.clock.Now().Format("20060102T150405.000Z")+".json")
	if _, err := store.Put(ctx, key, bytes.NewReader(payload), blob.PutOptions{
		ContentType: "application/json",
		Metadata:    map[string]string{"user": userID, "version": doc.Version},
	}); err != nil {
		return "", fmt.Errorf("write backup %s: %w", key, err)
	}
	return key, nil
}

// ReadBackup loads a backup document from the blob store, validates it and
// imports it.
func (s *Service) ReadBackup(ctx context.Context, store blob.Store, key string) (Result, error) {
	_, rc, err := store.Get(ctx, key)
	if err != nil {
		return Result{}, fmt.Errorf("read backup %s: %w", key, err)
	}
	defer func() { _ = rc.Close() }()
	payload, err := io.ReadAll(rc)
	if err != nil {
		return Result{}, fmt.Errorf("read backup %s: %w", key, err)
	}
	var doc BackupDocument
	if err := json.Unmarshal(payload, &doc); err != nil {
		return Result{}, domain.InvalidFormatError{Reason: "backup is not valid JSON"}
	}
	return s.ImportSnapshot(ctx, doc)
}

// ListBackups returns the stored backup objects for a user, oldest first.
func (s *Service) ListBackups(ctx context.Context, store blob.Store, userID string) ([]blob.Info, error) {
	return store.List(ctx, path.Join(backupKeyPrefix, userID)+"/")
}
