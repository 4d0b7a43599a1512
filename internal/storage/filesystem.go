package storage

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"
)

// tagDir is the per-bucket directory holding tag sidecar files; filesystems
// have no native object tags.
const tagDir = ".tags"

// FilesystemStore implements ObjectStore on a local directory tree, with
// buckets as top-level directories.
type FilesystemStore struct {
	root   string
	region string
}

// NewFilesystemStore creates a store rooted at root. The region label is
// what Locate reports for every bucket.
func NewFilesystemStore(root, region string) (*FilesystemStore, error) {
	if strings.TrimSpace(root) == "" {
		return nil, errors.New("storage: root directory is empty")
	}
	if err := os.MkdirAll(root, 0o755); err != nil {
		return nil, fmt.Errorf("create store root: %w", err)
	}
	if strings.TrimSpace(region) == "" {
		region = "local"
	}
	return &FilesystemStore{root: root, region: region}, nil
}

func (s *FilesystemStore) objectPath(bucket, key string) (string, error) {
	if strings.TrimSpace(bucket) == "" || strings.TrimSpace(key) == "" {
		return "", errors.New("storage: bucket and key must be set")
	}
	path := filepath.Join(s.root, bucket, filepath.FromSlash(key))
	if !strings.HasPrefix(filepath.Clean(path), filepath.Clean(s.root)+string(os.PathSeparator)) {
		return "", fmt.Errorf("storage: key %q escapes store root", key)
	}
	return path, nil
}

func (s *FilesystemStore) tagPath(bucket, key string) string {
	return filepath.Join(s.root, bucket, tagDir, filepath.FromSlash(key)+".json")
}

func (s *FilesystemStore) Get(ctx context.Context, bucket, key string) ([]byte, error) {
	path, err := s.objectPath(bucket, key)
	if err != nil {
		return nil, err
	}
	data, err := os.ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("%w: %s/%s", ErrNotFound, bucket, key)
	}
	if err != nil {
		return nil, fmt.Errorf("read object: %w", err)
	}
	return data, nil
}

func (s *FilesystemStore) Put(ctx context.Context, bucket, key string, body []byte, tags ...Tag) error {
	path, err := s.objectPath(bucket, key)
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("create object directory: %w", err)
	}
	if err := os.WriteFile(path, body, 0o644); err != nil {
		return fmt.Errorf("write object: %w", err)
	}
	return s.writeTags(bucket, key, tags)
}

func (s *FilesystemStore) Copy(ctx context.Context, srcBucket, srcKey, dstBucket, dstKey string, tags ...Tag) error {
	body, err := s.Get(ctx, srcBucket, srcKey)
	if err != nil {
		return err
	}
	return s.Put(ctx, dstBucket, dstKey, body, tags...)
}

func (s *FilesystemStore) Delete(ctx context.Context, bucket, key string) error {
	path, err := s.objectPath(bucket, key)
	if err != nil {
		return err
	}
	if err := os.Remove(path); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("delete object: %w", err)
	}
	if err := os.Remove(s.tagPath(bucket, key)); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("delete object tags: %w", err)
	}
	return nil
}

func (s *FilesystemStore) List(ctx context.Context, bucket, prefix string) ([]string, error) {
	bucketDir := filepath.Join(s.root, bucket)
	if _, err := os.Stat(bucketDir); errors.Is(err, fs.ErrNotExist) {
		return nil, nil
	}

	var keys []string
	err := filepath.WalkDir(bucketDir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			if d.Name() == tagDir {
				return filepath.SkipDir
			}
			return nil
		}
		rel, err := filepath.Rel(bucketDir, path)
		if err != nil {
			return err
		}
		key := filepath.ToSlash(rel)
		if prefix == "" || strings.HasPrefix(key, prefix) {
			keys = append(keys, key)
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("list bucket %s: %w", bucket, err)
	}
	sort.Strings(keys)
	return keys, nil
}

func (s *FilesystemStore) Tags(ctx context.Context, bucket, key string) ([]Tag, error) {
	data, err := os.ReadFile(s.tagPath(bucket, key))
	if errors.Is(err, fs.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read object tags: %w", err)
	}
	var tags []Tag
	if err := json.Unmarshal(data, &tags); err != nil {
		return nil, fmt.Errorf("decode object tags: %w", err)
	}
	return tags, nil
}

func (s *FilesystemStore) Locate(ctx context.Context, bucket string) (string, error) {
	return s.region, nil
}

func (s *FilesystemStore) writeTags(bucket, key string, tags []Tag) error {
	path := s.tagPath(bucket, key)
	if len(tags) == 0 {
		if err := os.Remove(path); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return fmt.Errorf("clear object tags: %w", err)
		}
		return nil
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("create tag directory: %w", err)
	}
	data, err := json.Marshal(tags)
	if err != nil {
		return fmt.Errorf("encode object tags: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("write object tags: %w", err)
	}
	return nil
}
