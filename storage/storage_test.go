package storage

import (
	"strings"
	"testing"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"
)

func TestParseS3URI(t *testing.T) {
	bucket, key, err := ParseS3URI("s3://scrapes/c5k/2024/items.jsonl.gz")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if bucket != "scrapes" || key != "c5k/2024/items.jsonl.gz" {
		t.Fatalf("got %q %q", bucket, key)
	}

	for _, bad := range []string{"scrapes/items.json", "s3://", "s3://bucket", "s3://bucket/", "s3:///key"} {
		if _, _, err := ParseS3URI(bad); err == nil {
			t.Errorf("expected error for %q", bad)
		}
	}
}

func TestBackupKey(t *testing.T) {
	at := time.Date(2024, 7, 3, 14, 5, 9, 0, time.FixedZone("CEST", 2*3600))
	got := BackupKey("pre-clear", at)
	want := "journal-seeder/pre-clear-2024-07-03T12-05-09Z.sql.gz"
	if got != want {
		t.Fatalf("got %q, want %q", got, want)
	}
	if !strings.HasPrefix(got, BackupPrefix) {
		t.Fatalf("key %q outside backup prefix", got)
	}
}

func TestExpiredBackups(t *testing.T) {
	base := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	obj := func(key string, day int) types.Object {
		return types.Object{Key: aws.String(key), LastModified: aws.Time(base.AddDate(0, 0, day))}
	}
	objects := []types.Object{obj("b", 2), obj("d", 4), obj("a", 1), obj("c", 3)}

	expired := ExpiredBackups(objects, 2)
	if len(expired) != 2 {
		t.Fatalf("expected 2 expired, got %d", len(expired))
	}
	if aws.ToString(expired[0].Key) != "b" || aws.ToString(expired[1].Key) != "a" {
		t.Fatalf("wrong objects expired: %s, %s", aws.ToString(expired[0].Key), aws.ToString(expired[1].Key))
	}
	if aws.ToString(objects[0].Key) != "b" {
		t.Fatal("input slice was reordered")
	}

	if got := ExpiredBackups(objects, 4); got != nil {
		t.Fatalf("nothing should expire, got %d", len(got))
	}
}
