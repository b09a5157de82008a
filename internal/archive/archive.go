package archive

import (
	"context"
	"fmt"
	"mime"
	"os"
	"path"
	"path/filepath"
	"strings"

	"github.com/minio/minio-go/v7"
)

func (a *implArchiver) Upload(ctx context.Context, jobName, dir string) ([]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("read job dir: %w", err)
	}

	var keys []string
	for _, entry := range entries {
		if !entry.Type().IsRegular() {
			continue
		}
		key := objectKey(a.prefix, jobName, entry.Name())
		local := filepath.Join(dir, entry.Name())

		_, err := a.client.FPutObject(ctx, a.bucket, key, local, minio.PutObjectOptions{
			ContentType: contentType(entry.Name()),
		})
		if err != nil {
			return keys, fmt.Errorf("upload %s: %w", key, err)
		}
		a.logger.Debug(ctx, "Archived %s -> s3://%s/%s", local, a.bucket, key)
		keys = append(keys, key)
	}

	a.logger.Info(ctx, "Archived %d files for %s", len(keys), jobName)
	return keys, nil
}

func objectKey(prefix, jobName, file string) string {
	return path.Join(strings.Trim(prefix, "/"), jobName, file)
}

func contentType(name string) string {
	switch strings.ToLower(filepath.Ext(name)) {
	case ".json":
		return "application/json"
	case ".md":
		return "text/markdown; charset=utf-8"
	case ".txt":
		return "text/plain; charset=utf-8"
	case ".docx":
		return "application/vnd.openxmlformats-officedocument.wordprocessingml.document"
	case ".wav":
		return "audio/wav"
	}
	if t := mime.TypeByExtension(filepath.Ext(name)); t != "" {
		return t
	}
	return "application/octet-stream"
}
