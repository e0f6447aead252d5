package service

import (
	"context"
	"encoding/json"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
	"github.com/smallbiznis/posbridge/internal/clock"
	"github.com/smallbiznis/posbridge/internal/config"
	lakedomain "github.com/smallbiznis/posbridge/internal/lake/domain"
	"go.uber.org/fx"
	"go.uber.org/zap"
)

// rawZone is the lake zone raw extracts land in, ahead of any curation.
const rawZone = "raw"

type Params struct {
	fx.In

	Log    *zap.Logger
	Config config.Config
	Clock  clock.Clock
}

type Store struct {
	root  string
	log   *zap.Logger
	clock clock.Clock
}

func New(p Params) lakedomain.Store {
	return &Store{
		root:  filepath.Join(p.Config.LakeDir, rawZone),
		log:   p.Log.Named("lake.store"),
		clock: p.Clock,
	}
}

// Write lands one document under its partition. The leaf name combines the
// write timestamp with a UUID so concurrent writers for the same partition
// never collide; the partition deriver itself stays leaf-agnostic.
func (s *Store) Write(ctx context.Context, partition lakedomain.Partition, payload any) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}

	dir := filepath.Join(s.root, filepath.FromSlash(partition.Path()))
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("create partition %s: %w", partition.Path(), err)
	}

	leaf := fmt.Sprintf("%s_%s.json", s.clock.Now().UTC().Format("20060102150405"), uuid.NewString())
	full := filepath.Join(dir, leaf)

	data, err := json.MarshalIndent(payload, "", "  ")
	if err != nil {
		return "", fmt.Errorf("encode document for %s: %w", partition.Path(), err)
	}
	if err := os.WriteFile(full, data, 0o644); err != nil {
		return "", fmt.Errorf("write %s: %w", full, err)
	}

	s.log.Info("document landed",
		zap.String("partition", partition.Path()),
		zap.String("object", leaf),
		zap.Int("bytes", len(data)),
	)
	return full, nil
}

// Scan walks every partition of an API and returns the landed objects in
// lexical order, which for the leaf naming scheme is also write order.
func (s *Store) Scan(api string) ([]string, error) {
	root := filepath.Join(s.root, api)
	var objects []string
	err := filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if !d.IsDir() && strings.HasSuffix(d.Name(), ".json") {
			objects = append(objects, path)
		}
		return nil
	})
	if os.IsNotExist(err) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("scan %s: %w", root, err)
	}
	return objects, nil
}

func (s *Store) Read(path string, v any) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read %s: %w", path, err)
	}
	if err := json.Unmarshal(data, v); err != nil {
		return fmt.Errorf("decode %s: %w", path, err)
	}
	return nil
}
