package postgres

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v4"
	"github.com/jackc/pgx/v4/pgxpool"

	"shopify-store-builder/internal/domain"
	"shopify-store-builder/internal/domain/model"
	"shopify-store-builder/internal/domain/ports/repository"
	"shopify-store-builder/internal/infra/security"
)

var _ repository.StoreJobRepository = (*storeJobRepo)(nil)

// storeJobRepo persists store creation jobs. The input snapshot's API
// secret and admin token are encrypted before they touch the database.
type storeJobRepo struct {
	pool *pgxpool.Pool
	tm   repository.TransactionManager
	enc  *security.EncryptionService
}

func NewStoreJobRepo(pool *pgxpool.Pool, tm repository.TransactionManager, enc *security.EncryptionService) *storeJobRepo {
	return &storeJobRepo{pool: pool, tm: tm, enc: enc}
}

// reclaimAfter is how long an unqueued-but-pending row can sit untouched
// before the queue hands it out again. Must not undercut the worker's
// Redis job lock TTL, or a slow live run could be double-claimed.
const reclaimAfter = 15 * time.Minute

const storeJobColumns = `
id, user_id, store_name, deployment_status, niche_data, color_scheme,
products_data, product_outcomes, progress_log, input, store_id, last_error,
queued, created_at, updated_at, completed_at`

func (r *storeJobRepo) Save(ctx context.Context, tx repository.Tx, job *model.StoreCreationJob) error {
	if job.CreatedAt.IsZero() {
		job.CreatedAt = time.Now()
	}
	job.UpdatedAt = time.Now()

	nicheJSON, err := marshalNullable(job.NicheData)
	if err != nil {
		return err
	}
	schemeJSON, err := marshalNullable(job.ColorScheme)
	if err != nil {
		return err
	}
	productsJSON, err := marshalNullableSlice(job.ProductsData)
	if err != nil {
		return err
	}
	outcomesJSON, err := marshalNullableSlice(job.ProductOutcomes)
	if err != nil {
		return err
	}
	progressJSON, err := marshalNullableSlice(job.ProgressLog)
	if err != nil {
		return err
	}
	inputJSON, err := r.marshalInput(job.Input)
	if err != nil {
		return err
	}

	const q = `
INSERT INTO store_creation_jobs (` + storeJobColumns + `)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16)
ON CONFLICT (id) DO UPDATE SET
  deployment_status = EXCLUDED.deployment_status,
  niche_data = EXCLUDED.niche_data,
  color_scheme = EXCLUDED.color_scheme,
  products_data = EXCLUDED.products_data,
  product_outcomes = EXCLUDED.product_outcomes,
  progress_log = EXCLUDED.progress_log,
  input = EXCLUDED.input,
  store_id = EXCLUDED.store_id,
  last_error = EXCLUDED.last_error,
  queued = EXCLUDED.queued,
  updated_at = EXCLUDED.updated_at,
  completed_at = EXCLUDED.completed_at;`

	_, err = execSQL(ctx, r.pool, tx, q,
		job.ID, job.UserID, job.StoreName, string(job.DeploymentStatus),
		nicheJSON, schemeJSON, productsJSON, outcomesJSON, progressJSON, inputJSON,
		nullIfEmpty(job.StoreID), nullIfEmpty(job.LastError),
		job.Queued, job.CreatedAt, job.UpdatedAt, job.CompletedAt)
	return err
}

func (r *storeJobRepo) FindByID(ctx context.Context, tx repository.Tx, id string) (*model.StoreCreationJob, error) {
	row, err := pickRow(ctx, r.pool, tx, `SELECT `+storeJobColumns+` FROM store_creation_jobs WHERE id = $1`, id)
	if err != nil {
		return nil, err
	}
	return r.scanJob(row)
}

func (r *storeJobRepo) FindByUser(ctx context.Context, tx repository.Tx, userID string, offset, limit int) ([]*model.StoreCreationJob, error) {
	if limit <= 0 {
		limit = 50
	}
	if offset < 0 {
		offset = 0
	}
	rows, err := querySQL(ctx, r.pool, tx,
		`SELECT `+storeJobColumns+` FROM store_creation_jobs WHERE user_id = $1 ORDER BY created_at DESC OFFSET $2 LIMIT $3`,
		userID, offset, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []*model.StoreCreationJob
	for rows.Next() {
		job, err := r.scanJob(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, job)
	}
	return out, rows.Err()
}

func (r *storeJobRepo) FetchAndMarkRunning(ctx context.Context) (*model.StoreCreationJob, error) {
	var job *model.StoreCreationJob

	err := r.tm.WithTx(ctx, pgx.TxOptions{}, func(ctx context.Context, tx repository.Tx) error {
		// Also reclaims rows a crashed worker claimed but never finished:
		// unqueued, still pending, and untouched past the reclaim window.
		const fetchQuery = `
SELECT ` + storeJobColumns + `
FROM store_creation_jobs
WHERE deployment_status = 'pending'
  AND (queued OR updated_at < now() - make_interval(secs => $1))
ORDER BY created_at
LIMIT 1
FOR UPDATE SKIP LOCKED;`

		row, err := pickRow(ctx, r.pool, tx, fetchQuery, reclaimAfter.Seconds())
		if err != nil {
			return err
		}
		fetched, err := r.scanJob(row)
		if err != nil {
			return err
		}

		// Clear the queued flag so no other worker picks it up.
		fetched.Queued = false
		if _, err := execSQL(ctx, r.pool, tx,
			`UPDATE store_creation_jobs SET queued = false, updated_at = now() WHERE id = $1`, fetched.ID); err != nil {
			return err
		}

		job = fetched
		return nil
	})

	if errors.Is(err, domain.ErrNotFound) {
		return nil, domain.ErrNotFound
	}
	return job, err
}

type rowScanner interface {
	Scan(dest ...interface{}) error
}

func (r *storeJobRepo) scanJob(row rowScanner) (*model.StoreCreationJob, error) {
	var (
		job          model.StoreCreationJob
		status       string
		nicheJSON    []byte
		schemeJSON   []byte
		productsJSON []byte
		outcomesJSON []byte
		progressJSON []byte
		inputJSON    []byte
		storeID      *string
		lastError    *string
	)
	err := row.Scan(
		&job.ID, &job.UserID, &job.StoreName, &status,
		&nicheJSON, &schemeJSON, &productsJSON, &outcomesJSON, &progressJSON, &inputJSON,
		&storeID, &lastError,
		&job.Queued, &job.CreatedAt, &job.UpdatedAt, &job.CompletedAt,
	)
	if err != nil {
		return nil, translateScanErr(err)
	}
	job.DeploymentStatus = model.DeploymentStatus(status)
	if storeID != nil {
		job.StoreID = *storeID
	}
	if lastError != nil {
		job.LastError = *lastError
	}
	if err := unmarshalNullable(nicheJSON, &job.NicheData); err != nil {
		return nil, domain.ErrReadDatabaseRow
	}
	if err := unmarshalNullable(schemeJSON, &job.ColorScheme); err != nil {
		return nil, domain.ErrReadDatabaseRow
	}
	if len(productsJSON) > 0 {
		if err := json.Unmarshal(productsJSON, &job.ProductsData); err != nil {
			return nil, domain.ErrReadDatabaseRow
		}
	}
	if len(outcomesJSON) > 0 {
		if err := json.Unmarshal(outcomesJSON, &job.ProductOutcomes); err != nil {
			return nil, domain.ErrReadDatabaseRow
		}
	}
	if len(progressJSON) > 0 {
		if err := json.Unmarshal(progressJSON, &job.ProgressLog); err != nil {
			return nil, domain.ErrReadDatabaseRow
		}
	}
	input, err := r.unmarshalInput(inputJSON)
	if err != nil {
		return nil, domain.ErrReadDatabaseRow
	}
	job.Input = input
	return &job, nil
}

// marshalInput encrypts the credential fields of the input snapshot before
// serializing it.
func (r *storeJobRepo) marshalInput(in *model.StoreCreationInput) ([]byte, error) {
	if in == nil {
		return nil, nil
	}
	cp := *in
	if r.enc != nil {
		var err error
		if cp.APISecret != "" {
			if cp.APISecret, err = r.enc.Encrypt(cp.APISecret); err != nil {
				return nil, fmt.Errorf("encrypt api secret: %w", err)
			}
		}
		if cp.AdminAPIAccessToken != "" {
			if cp.AdminAPIAccessToken, err = r.enc.Encrypt(cp.AdminAPIAccessToken); err != nil {
				return nil, fmt.Errorf("encrypt admin token: %w", err)
			}
		}
	}
	return json.Marshal(&cp)
}

func (r *storeJobRepo) unmarshalInput(data []byte) (*model.StoreCreationInput, error) {
	if len(data) == 0 {
		return nil, nil
	}
	var in model.StoreCreationInput
	if err := json.Unmarshal(data, &in); err != nil {
		return nil, err
	}
	if r.enc != nil {
		var err error
		if in.APISecret != "" {
			if in.APISecret, err = r.enc.Decrypt(in.APISecret); err != nil {
				return nil, err
			}
		}
		if in.AdminAPIAccessToken != "" {
			if in.AdminAPIAccessToken, err = r.enc.Decrypt(in.AdminAPIAccessToken); err != nil {
				return nil, err
			}
		}
	}
	return &in, nil
}

func marshalNullable[T any](v *T) ([]byte, error) {
	if v == nil {
		return nil, nil
	}
	return json.Marshal(v)
}

func marshalNullableSlice[T any](v []T) ([]byte, error) {
	if len(v) == 0 {
		return nil, nil
	}
	return json.Marshal(v)
}

func unmarshalNullable[T any](data []byte, dst **T) error {
	if len(data) == 0 {
		return nil
	}
	var v T
	if err := json.Unmarshal(data, &v); err != nil {
		return err
	}
	*dst = &v
	return nil
}

func nullIfEmpty(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}
