package gcs

import (
	"strings"
	"testing"
	"time"
)

func TestParseURI(t *testing.T) {
	tests := []struct {
		uri     string
		bucket  string
		object  string
		wantErr bool
	}{
		{"gs://bucket/folder/file.csv", "bucket", "folder/file.csv", false},
		{"gs://bucket/file.csv", "bucket", "file.csv", false},
		{"gs://bucket", "", "", true},
		{"gs://bucket/", "", "", true},
		{"s3://bucket/file.csv", "", "", true},
		{"", "", "", true},
	}
	for _, tt := range tests {
		t.Run(tt.uri, func(t *testing.T) {
			bucket, object, err := ParseURI(tt.uri)
			if (err != nil) != tt.wantErr {
				t.Fatalf("err = %v, wantErr %v", err, tt.wantErr)
			}
			if bucket != tt.bucket || object != tt.object {
				t.Errorf("got (%q, %q), want (%q, %q)", bucket, object, tt.bucket, tt.object)
			}
		})
	}
}

func TestExtractFilenameFromGCSURI(t *testing.T) {
	tests := map[string]string{
		"gs://bucket/folder/file.csv": "file.csv",
		"gs://bucket/file.csv":        "file.csv",
		"gs://bucket":                 "bucket",
	}
	for uri, want := range tests {
		if got := ExtractFilenameFromGCSURI(uri); got != want {
			t.Errorf("ExtractFilenameFromGCSURI(%q) = %q, want %q", uri, got, want)
		}
	}
}

func TestStatementObjectName(t *testing.T) {
	now := time.Date(2025, 3, 9, 10, 0, 0, 0, time.UTC)

	name := StatementObjectName(`C:\Users\me\jan.csv`, now)

	if !strings.HasPrefix(name, "statements/2025/03/") {
		t.Errorf("unexpected prefix: %s", name)
	}
	if !strings.HasSuffix(name, "-jan.csv") {
		t.Errorf("unexpected suffix: %s", name)
	}
	if other := StatementObjectName("jan.csv", now); other == name {
		t.Error("object names should be unique")
	}
	if got := StatementObjectName("", now); !strings.HasSuffix(got, "-statement.csv") {
		t.Errorf("empty filename should get a default: %s", got)
	}
	if got := URI("b", "o/x.csv"); got != "gs://b/o/x.csv" {
		t.Errorf("URI = %q", got)
	}
}
