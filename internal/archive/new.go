package archive

import (
	"errors"
	"fmt"

	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"
	"github.com/nguyentantai21042004/minutes-flow/internal/config"
	"github.com/nguyentantai21042004/minutes-flow/internal/logger"
)

var ErrDisabled = errors.New("archive: disabled")

type implArchiver struct {
	client *minio.Client
	bucket string
	prefix string
	logger logger.Logger
}

// New connects to the bucket described by cfg. It returns ErrDisabled when
// archiving is turned off.
func New(cfg config.ArchiveConfig, log logger.Logger) (Archiver, error) {
	if !cfg.Enabled {
		return nil, ErrDisabled
	}

	client, err := minio.New(cfg.Endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(cfg.AccessKey, cfg.SecretKey, ""),
		Secure: cfg.UseSSL,
		Region: cfg.Region,
	})
	if err != nil {
		return nil, fmt.Errorf("minio connection: %w", err)
	}

	return &implArchiver{
		client: client,
		bucket: cfg.Bucket,
		prefix: cfg.Prefix,
		logger: log,
	}, nil
}
