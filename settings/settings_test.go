package settings

import (
	"os"
	"path/filepath"
	"testing"
)

func TestFetchFormatDefault(t *testing.T) {
	Reset()
	if FetchFormat() != "array" {
		t.Fatalf("expected array, got %s", FetchFormat())
	}
	Set(KeyFetchFormat, "frame")
	if FetchFormat() != "frame" {
		t.Fatal("override not applied")
	}
	Reset()
}

func TestLoadStores(t *testing.T) {
	Reset()
	defer Reset()

	path := filepath.Join(t.TempDir(), "settings.json")
	err := os.WriteFile(path, []byte(`{
		"fetch_format": "frame",
		"stores": {
			"local": {"protocol": "file", "location": "/data/external"},
			"raw": {"protocol": "s3", "bucket": "raw-bucket", "endpoint": "http://minio:9000"}
		}
	}`), 0o644)
	if err != nil {
		t.Fatal(err)
	}

	if err := Load(path); err != nil {
		t.Fatal(err)
	}
	if FetchFormat() != "frame" {
		t.Fatal("fetch_format not loaded")
	}

	stores, err := Stores()
	if err != nil {
		t.Fatal(err)
	}
	if len(stores) != 2 {
		t.Fatalf("expected 2 stores, got %d", len(stores))
	}
	if stores["local"].Protocol != "file" || stores["local"].Location != "/data/external" || stores["local"].Name != "local" {
		t.Fatalf("bad local store %+v", stores["local"])
	}
	if stores["raw"].Bucket != "raw-bucket" {
		t.Fatalf("bad raw store %+v", stores["raw"])
	}
}
