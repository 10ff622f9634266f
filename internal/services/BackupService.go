package services

import (
	"buildwatch/internal/providers"
	"buildwatch/internal/storage"
	"fmt"
)

type BackupServiceInterface interface {
	// Backup returns the whole store, zstd-compressed when compress is set.
	Backup(compress bool) ([]byte, error)
	// Restore replaces the store with a plain or zstd-compressed snapshot.
	Restore(data []byte) error
}

type BackupService struct {
	store      storage.Store
	compressor storage.CompressorInterface
	cache      providers.CacheProviderInterface
	logger     providers.Logger
}

func NewBackupService(store storage.Store, compressor storage.CompressorInterface, cache providers.CacheProviderInterface, logger providers.Logger) BackupServiceInterface {
	return &BackupService{store: store, compressor: compressor, cache: cache, logger: logger}
}

func (bs *BackupService) Backup(compress bool) ([]byte, error) {
	data, err := bs.store.Snapshot()
	if err != nil {
		return nil, fmt.Errorf("snapshot store: %w", err)
	}
	if !compress {
		return data, nil
	}
	return bs.compressor.Compress(data)
}

func (bs *BackupService) Restore(data []byte) error {
	if len(data) == 0 {
		return invalidf("backup is empty")
	}
	if bs.compressor.IsCompressed(data) {
		plain, err := bs.compressor.Decompress(data)
		if err != nil {
			return invalidf("corrupt zstd backup: %s", err)
		}
		data = plain
	}

	if err := bs.store.Restore(data); err != nil {
		if storage.IsInvalidSnapshot(err) {
			return invalidf("%s", err)
		}
		return fmt.Errorf("restore store: %w", err)
	}
	bs.cache.Clear()
	bs.logger.Infof(providers.TypePost, "Store restored from backup (%d bytes)", len(data))
	return nil
}
