package storage

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"os/exec"
	"sort"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"
	"github.com/klauspost/pgzip"
	"go.uber.org/zap"
)

// BackupPrefix ist der Schlüssel-Präfix aller Dumps dieses Tools.
const BackupPrefix = "journal-seeder/"

// BackupKey baut den Objektnamen für einen Dump zum Zeitpunkt t.
func BackupKey(kind string, t time.Time) string {
	return fmt.Sprintf("%s%s-%s.sql.gz", BackupPrefix, kind, t.UTC().Format("2006-01-02T15-04-05Z"))
}

// Dump führt pg_dump gegen dsn aus und liefert den gzip-komprimierten Dump.
func Dump(ctx context.Context, pgDump, dsn string) ([]byte, error) {
	cmd := exec.CommandContext(ctx, pgDump, "--no-password", "--dbname="+dsn)
	var stderr bytes.Buffer
	cmd.Stderr = &stderr

	stdout, err := cmd.StdoutPipe()
	if err != nil {
		return nil, err
	}
	if err := cmd.Start(); err != nil {
		return nil, fmt.Errorf("start %s: %w", pgDump, err)
	}

	var buf bytes.Buffer
	zw := pgzip.NewWriter(&buf)
	if _, err := io.Copy(zw, stdout); err != nil {
		_ = cmd.Wait()
		return nil, err
	}
	if err := zw.Close(); err != nil {
		_ = cmd.Wait()
		return nil, err
	}
	if err := cmd.Wait(); err != nil {
		return nil, fmt.Errorf("%s: %w: %s", pgDump, err, bytes.TrimSpace(stderr.Bytes()))
	}
	return buf.Bytes(), nil
}

// BackupDatabase dumpt die Datenbank und legt den Dump unter key in bucket ab.
func BackupDatabase(ctx context.Context, client *s3.Client, bucket, key, dsn, pgDump string) (string, error) {
	data, err := Dump(ctx, pgDump, dsn)
	if err != nil {
		return "", fmt.Errorf("dump: %w", err)
	}
	return UploadFile(ctx, client, bucket, key, bytes.NewReader(data))
}

// ExpiredBackups gibt alle Objekte jenseits der keep neuesten zurück.
func ExpiredBackups(objects []types.Object, keep int) []types.Object {
	if keep < 0 {
		keep = 0
	}
	if len(objects) <= keep {
		return nil
	}
	sorted := append([]types.Object(nil), objects...)
	sort.Slice(sorted, func(i, j int) bool {
		return aws.ToTime(sorted[i].LastModified).After(aws.ToTime(sorted[j].LastModified))
	})
	return sorted[keep:]
}

// RotateBackups löscht alte Dumps unter BackupPrefix, bis nur keep übrig sind.
func RotateBackups(ctx context.Context, client *s3.Client, bucket string, keep int, logger *zap.Logger) error {
	out, err := client.ListObjectsV2(ctx, &s3.ListObjectsV2Input{
		Bucket: aws.String(bucket),
		Prefix: aws.String(BackupPrefix),
	})
	if err != nil {
		return err
	}

	expired := ExpiredBackups(out.Contents, keep)
	if len(expired) == 0 {
		logger.Info("No rotation needed", zap.Int("backups", len(out.Contents)), zap.Int("keep", keep))
		return nil
	}
	for _, obj := range expired {
		logger.Info("Deleting old backup", zap.String("key", aws.ToString(obj.Key)))
		_, err := client.DeleteObject(ctx, &s3.DeleteObjectInput{
			Bucket: aws.String(bucket),
			Key:    obj.Key,
		})
		if err != nil {
			logger.Warn("Deleting backup failed", zap.String("key", aws.ToString(obj.Key)), zap.Error(err))
		}
	}
	return nil
}
