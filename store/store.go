// Package store persists fitted estimators in a bbolt database.
//
// Each Put records a run: the latest run per name is kept in the models
// bucket and every run is appended to a per-name history bucket.
package store

import (
	"encoding/json"
	"fmt"
	"sort"
	"time"

	"github.com/google/uuid"
	bolt "go.etcd.io/bbolt"

	"github.com/YuminosukeSato/minisk/core/model"
	"github.com/YuminosukeSato/minisk/pkg/errors"
	"github.com/YuminosukeSato/minisk/pkg/log"
	"github.com/YuminosukeSato/minisk/registry"
)

var (
	modelsBucket = []byte("models")
	runsBucket   = []byte("runs")
)

// ErrNotFound is returned when no model is stored under a name.
var ErrNotFound = errors.New("model not found")

// Record is one stored run of a fitted estimator.
type Record struct {
	RunID     uuid.UUID           `json:"run_id"`
	Name      string              `json:"name"`
	ModelType string              `json:"model_type"`
	CreatedAt time.Time           `json:"created_at"`
	Weights   *model.ModelWeights `json:"weights"`
	Metrics   map[string]float64  `json:"metrics,omitempty"`
}

// Store is a bbolt-backed model store. It is safe for concurrent use.
type Store struct {
	db     *bolt.DB
	logger log.Logger
}

// Open opens (creating if needed) the store at path.
func Open(path string) (*Store, error) {
	db, err := bolt.Open(path, 0o600, &bolt.Options{Timeout: time.Second})
	if err != nil {
		return nil, errors.Wrapf(err, "store: open %s", path)
	}
	if err := db.Update(func(tx *bolt.Tx) error {
		for _, name := range [][]byte{modelsBucket, runsBucket} {
			if _, err := tx.CreateBucketIfNotExists(name); err != nil {
				return errors.Wrapf(err, "create bucket %s", name)
			}
		}
		return nil
	}); err != nil {
		db.Close()
		return nil, errors.Wrap(err, "store: init")
	}

	logger := log.GetLoggerWithName("store")
	logger.Debug("store opened", "path", path)
	return &Store{db: db, logger: logger}, nil
}

// Close releases the database file.
func (s *Store) Close() error {
	return errors.Wrap(s.db.Close(), "store: close")
}

// Put exports the weights of a fitted estimator and stores them as a new
// run under name. est must implement model.WeightExporter.
func (s *Store) Put(name string, est model.Estimator, metrics map[string]float64) (*Record, error) {
	const op = "store.Put"
	if name == "" {
		return nil, errors.NewValidationError("name", "must not be empty", name)
	}
	exporter, ok := est.(model.WeightExporter)
	if !ok {
		return nil, errors.NewValueError(op, fmt.Sprintf("%s cannot export weights", est.Name()))
	}
	weights, err := exporter.ExportWeights()
	if err != nil {
		return nil, errors.Wrap(err, op)
	}

	rec := &Record{
		RunID:     uuid.New(),
		Name:      name,
		ModelType: weights.ModelType,
		CreatedAt: time.Now().UTC(),
		Weights:   weights,
		Metrics:   metrics,
	}
	data, err := json.Marshal(rec)
	if err != nil {
		return nil, errors.Wrap(err, op)
	}

	if err := s.db.Update(func(tx *bolt.Tx) error {
		if err := tx.Bucket(modelsBucket).Put([]byte(name), data); err != nil {
			return errors.Wrap(err, "put to models bucket")
		}
		runs, err := tx.Bucket(runsBucket).CreateBucketIfNotExists([]byte(name))
		if err != nil {
			return errors.Wrap(err, "create runs bucket")
		}
		return errors.Wrap(runs.Put([]byte(rec.RunID.String()), data), "put to runs bucket")
	}); err != nil {
		return nil, errors.Wrap(err, op)
	}

	s.logger.Info("model stored",
		"name", name,
		"run_id", rec.RunID.String(),
		log.ModelNameKey, rec.ModelType,
	)
	return rec, nil
}

// Get returns the latest run stored under name.
func (s *Store) Get(name string) (*Record, error) {
	var rec Record
	err := s.db.View(func(tx *bolt.Tx) error {
		data := tx.Bucket(modelsBucket).Get([]byte(name))
		if data == nil {
			return errors.Wrapf(ErrNotFound, "%q", name)
		}
		return json.Unmarshal(data, &rec)
	})
	if err != nil {
		return nil, err
	}
	return &rec, nil
}

// Load rebuilds the estimator of the latest run under name. The
// estimator's package must be registered.
func (s *Store) Load(name string) (model.Estimator, error) {
	rec, err := s.Get(name)
	if err != nil {
		return nil, err
	}
	return Restore(rec.Weights)
}

// Restore builds an estimator from exported weights through the registry.
func Restore(w *model.ModelWeights) (model.Estimator, error) {
	if w == nil {
		return nil, errors.NewValueError("store.Restore", "weights are nil")
	}
	est, err := registry.New(w.ModelType)
	if err != nil {
		return nil, err
	}
	importer, ok := est.(model.WeightExporter)
	if !ok {
		return nil, errors.NewValueError("store.Restore", fmt.Sprintf("%s cannot import weights", w.ModelType))
	}
	if err := importer.ImportWeights(w); err != nil {
		return nil, err
	}
	return est, nil
}

// List returns the latest run of every stored name, sorted by name.
func (s *Store) List() ([]Record, error) {
	var out []Record
	err := s.db.View(func(tx *bolt.Tx) error {
		return tx.Bucket(modelsBucket).ForEach(func(_, v []byte) error {
			var rec Record
			if err := json.Unmarshal(v, &rec); err != nil {
				return err
			}
			out = append(out, rec)
			return nil
		})
	})
	if err != nil {
		return nil, errors.Wrap(err, "store.List")
	}
	return out, nil
}

// History returns every run stored under name, oldest first.
func (s *Store) History(name string) ([]Record, error) {
	var out []Record
	err := s.db.View(func(tx *bolt.Tx) error {
		runs := tx.Bucket(runsBucket).Bucket([]byte(name))
		if runs == nil {
			return errors.Wrapf(ErrNotFound, "%q", name)
		}
		return runs.ForEach(func(_, v []byte) error {
			var rec Record
			if err := json.Unmarshal(v, &rec); err != nil {
				return err
			}
			out = append(out, rec)
			return nil
		})
	})
	if err != nil {
		return nil, err
	}
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].CreatedAt.Before(out[j].CreatedAt)
	})
	return out, nil
}

// Delete removes name and its run history.
func (s *Store) Delete(name string) error {
	return s.db.Update(func(tx *bolt.Tx) error {
		models := tx.Bucket(modelsBucket)
		if models.Get([]byte(name)) == nil {
			return errors.Wrapf(ErrNotFound, "%q", name)
		}
		if err := models.Delete([]byte(name)); err != nil {
			return errors.Wrap(err, "store.Delete")
		}
		runs := tx.Bucket(runsBucket)
		if runs.Bucket([]byte(name)) != nil {
			return errors.Wrap(runs.DeleteBucket([]byte(name)), "store.Delete")
		}
		return nil
	})
}
