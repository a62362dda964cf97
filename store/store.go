package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"cinema-kiosk/model"
)

const (
	appDir          = "cinema-kiosk"
	maxRecentOrders = 20
)

// SnapshotStore persists the sold seats of each film and the latest orders.
// A missing snapshot loads as nil without error.
type SnapshotStore interface {
	LoadSnapshot(ctx context.Context, key string) (map[string]model.SeatStatus, error)
	SaveSnapshot(ctx context.Context, key string, snapshot map[string]model.SeatStatus) error
	RememberOrder(ctx context.Context, order model.Order) error
	RecentOrders(ctx context.Context) ([]model.Order, error)
}

var ErrEmptyKey = errors.New("snapshot key is required")

type envelope[T any] struct {
	UpdatedAt time.Time `json:"updated_at"`
	Data      T         `json:"data"`
}

type orderHistory struct {
	Orders []model.Order `json:"orders"`
}

// FileStore keeps one JSON file per snapshot key under dir.
type FileStore struct {
	dir string
}

func NewFileStore(dir string) *FileStore {
	return &FileStore{dir: dir}
}

// DefaultFileStore stores under the user config directory.
func DefaultFileStore() (*FileStore, error) {
	dir, err := os.UserConfigDir()
	if err != nil {
		return nil, err
	}
	return NewFileStore(filepath.Join(dir, appDir)), nil
}

func (s *FileStore) Dir() string {
	return s.dir
}

func (s *FileStore) LoadSnapshot(_ context.Context, key string) (map[string]model.SeatStatus, error) {
	name, err := snapshotFile(key)
	if err != nil {
		return nil, err
	}
	cache, err := loadJSON[envelope[map[string]model.SeatStatus]](filepath.Join(s.dir, name))
	if err != nil {
		return nil, err
	}
	return cache.Data, nil
}

func (s *FileStore) SaveSnapshot(_ context.Context, key string, snapshot map[string]model.SeatStatus) error {
	name, err := snapshotFile(key)
	if err != nil {
		return err
	}
	return saveJSON(filepath.Join(s.dir, name), envelope[map[string]model.SeatStatus]{
		UpdatedAt: time.Now(),
		Data:      snapshot,
	})
}

func (s *FileStore) RememberOrder(ctx context.Context, order model.Order) error {
	history, err := s.RecentOrders(ctx)
	if err != nil {
		return fmt.Errorf("order not saved: %w", err)
	}
	return saveJSON(filepath.Join(s.dir, "orders.json"), orderHistory{Orders: prependOrder(history, order)})
}

func (s *FileStore) RecentOrders(_ context.Context) ([]model.Order, error) {
	history, err := loadJSON[orderHistory](filepath.Join(s.dir, "orders.json"))
	if err != nil {
		return nil, fmt.Errorf("invalid order history: %w", err)
	}
	return history.Orders, nil
}

// prependOrder puts order first, drops an older entry with the same id and
// caps the list.
func prependOrder(history []model.Order, order model.Order) []model.Order {
	next := []model.Order{order}
	for _, existing := range history {
		if existing.ID == order.ID {
			continue
		}
		next = append(next, existing)
		if len(next) >= maxRecentOrders {
			break
		}
	}
	return next
}

func loadJSON[T any](path string) (T, error) {
	var value T
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return value, nil
		}
		return value, err
	}
	if err := json.Unmarshal(data, &value); err != nil {
		return value, err
	}
	return value, nil
}

func saveJSON[T any](path string, value T) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	payload, err := json.MarshalIndent(value, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(path, payload, 0o644)
}

func snapshotFile(key string) (string, error) {
	key = sanitizeKey(key)
	if key == "" {
		return "", ErrEmptyKey
	}
	return fmt.Sprintf("seats_%s.json", key), nil
}

func sanitizeKey(key string) string {
	key = strings.TrimSpace(key)
	return strings.Map(func(r rune) rune {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9', r == '-', r == '_':
			return r
		default:
			return '_'
		}
	}, key)
}
