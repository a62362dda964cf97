package cmd

import (
	"context"
	"errors"
	"fmt"

	"go.uber.org/zap"

	"cinema-kiosk/config"
	"cinema-kiosk/events"
	"cinema-kiosk/kiosk"
	"cinema-kiosk/logger"
	"cinema-kiosk/model"
	"cinema-kiosk/service"
	"cinema-kiosk/store"
)

// deps holds the infrastructure a command runs against.
type deps struct {
	cfg     *config.Config
	log     *zap.Logger
	store   store.SnapshotStore
	pub     events.Publisher
	closers []func() error
}

func newDeps(ctx context.Context, cfg *config.Config) (*deps, error) {
	log, err := logger.New(cfg.LogLevel, cfg.LogFile)
	if err != nil {
		return nil, fmt.Errorf("failed to open log: %w", err)
	}
	d := &deps{cfg: cfg, log: log}
	d.closers = append(d.closers, func() error {
		_ = log.Sync()
		return nil
	})

	if err := d.openStore(ctx); err != nil {
		_ = d.Close()
		return nil, err
	}
	d.openPublisher()
	return d, nil
}

func (d *deps) openStore(ctx context.Context) error {
	switch d.cfg.Store {
	case "redis":
		client, err := store.DialRedis(ctx, d.cfg.RedisAddr)
		if err != nil {
			return err
		}
		d.store = store.NewRedisStore(client, "")
		d.closers = append(d.closers, client.Close)
	case "memory":
		d.store = store.NewMemoryStore()
	default:
		fs := store.NewFileStore(d.cfg.StoreDir)
		if d.cfg.StoreDir == "" {
			var err error
			if fs, err = store.DefaultFileStore(); err != nil {
				return err
			}
		}
		d.log.Info("file store", zap.String("dir", fs.Dir()))
		d.store = fs
	}
	return nil
}

// openPublisher always logs events and also sends them to rabbitmq when an
// url is set. A broker that cannot be reached is logged and skipped.
func (d *deps) openPublisher() {
	pubs := events.Tee{events.NewLogPublisher(d.log)}
	if d.cfg.AMQPURL != "" {
		amqpPub, err := events.DialAMQP(d.cfg.AMQPURL)
		if err != nil {
			d.log.Warn("rabbitmq unavailable, events are only logged", zap.Error(err))
		} else {
			pubs = append(pubs, amqpPub)
		}
	}
	d.pub = pubs
	d.closers = append(d.closers, pubs.Close)
}

// catalogClient is nil when no catalog endpoint is configured.
func (d *deps) catalogClient() *service.Client {
	if d.cfg.CatalogURL == "" {
		return nil
	}
	return service.NewClient(nil, d.cfg.CatalogURL)
}

// films loads the catalog, falling back to the built-in films.
func (d *deps) films(ctx context.Context) []model.Film {
	films, err := service.LoadCatalog(ctx, d.catalogClient())
	if err != nil {
		d.log.Warn("catalog unavailable, using built-in films", zap.Error(err))
	}
	return films
}

// withFilm adds film id to films when the listing left it out and the
// catalog knows it.
func (d *deps) withFilm(ctx context.Context, films []model.Film, id string) []model.Film {
	for _, film := range films {
		if film.Id == id {
			return films
		}
	}
	client := d.catalogClient()
	if client == nil {
		return films
	}
	film, err := client.Film(ctx, id)
	if err != nil {
		d.log.Warn("film lookup failed", zap.String("film", id), zap.Error(err))
		return films
	}
	return append(films, film)
}

func (d *deps) newKiosk(films []model.Film) *kiosk.Kiosk {
	return kiosk.New(kiosk.Settings{
		Hall:         d.cfg.HallConfig(),
		Tickets:      d.cfg.Tickets,
		Width:        d.cfg.Width,
		Height:       d.cfg.Height,
		Curvature:    d.cfg.Curvature,
		PaymentDelay: d.cfg.PaymentDelay,
		Films:        films,
	}, kiosk.WithStore(d.store), kiosk.WithPublisher(d.pub), kiosk.WithLogger(d.log))
}

// Close releases everything in reverse order of opening.
func (d *deps) Close() error {
	var errs []error
	for i := len(d.closers) - 1; i >= 0; i-- {
		errs = append(errs, d.closers[i]())
	}
	d.closers = nil
	return errors.Join(errs...)
}
