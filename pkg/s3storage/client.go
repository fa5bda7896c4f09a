// "Тупой" клиент: только загрузка артефактов, никакой бизнес-логики.

package s3storage

import (
	"context"
	"fmt"
	"path"
	"time"

	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"

	"github.com/ilkoid/poncho-bot/pkg/config"
)

// ClientInterface определяет интерфейс для S3 клиента.
// Используется для мокания в тестах и внедрения зависимостей.
type ClientInterface interface {
	UploadFile(ctx context.Context, localPath string, key string) error
}

// Client — клиент S3-совместимого хранилища для архива аудио-артефактов.
//
// Скачанное аудио (до удаления локального файла) опционально
// складывается в бакет — чтобы транскрипцию можно было перепроверить
// по исходнику, не скачивая видео заново.
type Client struct {
	api    *minio.Client
	bucket string
	prefix string
}

// Проверка что Client реализует ClientInterface
var _ ClientInterface = (*Client)(nil)

// New создает клиент, используя наш конфиг.
func New(cfg config.S3Config) (*Client, error) {
	minioClient, err := minio.New(cfg.Endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(cfg.AccessKey, cfg.SecretKey, ""),
		Secure: cfg.UseSSL,
		Region: cfg.Region,
	})
	if err != nil {
		return nil, err
	}

	return &Client{
		api:    minioClient,
		bucket: cfg.Bucket,
		prefix: cfg.Prefix,
	}, nil
}

// UploadFile загружает локальный файл в бакет под ключом prefix/key.
func (c *Client) UploadFile(ctx context.Context, localPath string, key string) error {
	fullKey := path.Join(c.prefix, key)

	info, err := c.api.FPutObject(ctx, c.bucket, fullKey, localPath, minio.PutObjectOptions{})
	if err != nil {
		return fmt.Errorf("failed to upload %s to s3: %w", localPath, err)
	}

	_ = info // размер логируется вызывающим кодом при необходимости
	return nil
}

// ArchiveKey строит ключ архива для видео: <videoID>-<timestamp>.m4a.
//
// Timestamp в ключе — чтобы повторная транскрипция того же видео
// не перетирала предыдущий артефакт.
func ArchiveKey(videoID string) string {
	return fmt.Sprintf("%s-%s.m4a", videoID, time.Now().UTC().Format("2006-01-02-15-04-05"))
}
