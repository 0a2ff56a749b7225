// Copyright (c) 2026 OSG-HTC. All rights reserved.
// Author: OSG-HTC Topology team

/*
The PostgreSQL repository keeps the aggregate consistent with two tools:

  - JSON Aggregation: identifiers and their metadata are loaded with the
    institution row in one round-trip (json_agg + LEFT JOIN).
  - Row Locks: writes lock the target institution (FOR UPDATE) before
    reconciling, so concurrent updates of one record are serialized.

Uniqueness is enforced by the schema. Violations are mapped to domain
conflicts by constraint name.
*/
package institution

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"sync"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/osg-htc/institutions/internal/platform/apperr"
	"github.com/osg-htc/institutions/internal/platform/database/schema"
	"github.com/osg-htc/institutions/internal/platform/dberr"
	"github.com/osg-htc/institutions/internal/platform/postgres"
	"github.com/osg-htc/institutions/internal/reference"
	"github.com/osg-htc/institutions/pkg/pointer"
)

// constraintErrors maps unique constraints to the conflict they represent.
var constraintErrors = dberr.Constraints{
	schema.Institution.NameUnique:            ErrNameTaken,
	schema.Institution.PublicIDUnique:        ErrPublicIDTaken,
	schema.InstitutionIdentifier.ValueUnique: ErrIdentifierTaken,
}

// # PostgreSQL Repository

// postgresRepository implements [Repository] using pgx.
type postgresRepository struct {
	pool *pgxpool.Pool

	typesMu sync.Mutex
	typeIDs map[IdentifierKind]string
}

// NewPostgresRepository constructs a PostgreSQL backed institution store.
func NewPostgresRepository(pool *pgxpool.Pool) Repository {
	return &postgresRepository{pool: pool}
}

// # Queries

// selectInstitution loads institution rows with their identifiers aggregated as JSON.
var selectInstitution = fmt.Sprintf(`
	SELECT
		i.%s, i.%s, i.%s, i.%s, i.%s, i.%s, i.%s, i.%s, i.%s, i.%s, i.%s,
		COALESCE((
			SELECT json_agg(json_build_object(
				'id', ii.%s,
				'type', t.%s,
				'value', ii.%s,
				'ipeds', CASE WHEN m.%s IS NULL THEN NULL ELSE json_build_object(
					'id', m.%s, 'website', m.%s, 'hbcu', m.%s, 'tribal', m.%s,
					'program_length', m.%s, 'control', m.%s, 'state', m.%s, 'size', m.%s) END,
				'carnegie', CASE WHEN c.%s IS NULL THEN NULL ELSE json_build_object(
					'id', c.%s, 'classification2021', c.%s, 'classification2025', c.%s) END
			) ORDER BY t.%s)
			FROM %s ii
			JOIN %s t ON t.%s = ii.%s
			LEFT JOIN %s m ON m.%s = ii.%s
			LEFT JOIN %s c ON c.%s = ii.%s
			WHERE ii.%s = i.%s
		), '[]') AS identifiers
	FROM %s i`,
	schema.Institution.ID, schema.Institution.PublicID, schema.Institution.Name, schema.Institution.Valid,
	schema.Institution.Latitude, schema.Institution.Longitude, schema.Institution.State,
	schema.Institution.CreatedAt, schema.Institution.CreatedBy, schema.Institution.UpdatedAt, schema.Institution.UpdatedBy,
	schema.InstitutionIdentifier.ID,
	schema.IdentifierType.Name,
	schema.InstitutionIdentifier.Value,
	schema.IPEDSMetadata.ID,
	schema.IPEDSMetadata.ID, schema.IPEDSMetadata.Website, schema.IPEDSMetadata.HBCU, schema.IPEDSMetadata.Tribal,
	schema.IPEDSMetadata.ProgramLength, schema.IPEDSMetadata.Control, schema.IPEDSMetadata.State, schema.IPEDSMetadata.InstitutionSize,
	schema.CarnegieMetadata.ID,
	schema.CarnegieMetadata.ID, schema.CarnegieMetadata.Classification2021, schema.CarnegieMetadata.Classification2025,
	schema.IdentifierType.Name,
	schema.InstitutionIdentifier.Table,
	schema.IdentifierType.Table, schema.IdentifierType.ID, schema.InstitutionIdentifier.TypeID,
	schema.IPEDSMetadata.Table, schema.IPEDSMetadata.IdentifierID, schema.InstitutionIdentifier.ID,
	schema.CarnegieMetadata.Table, schema.CarnegieMetadata.IdentifierID, schema.InstitutionIdentifier.ID,
	schema.InstitutionIdentifier.InstitutionID, schema.Institution.ID,
	schema.Institution.Table,
)

// identifierRow is the JSON shape produced by selectInstitution.
type identifierRow struct {
	ID       string `json:"id"`
	Type     string `json:"type"`
	Value    string `json:"value"`
	IPEDS    *struct {
		ID            string  `json:"id"`
		Website       *string `json:"website"`
		HBCU          *bool   `json:"hbcu"`
		Tribal        *bool   `json:"tribal"`
		ProgramLength *string `json:"program_length"`
		Control       *string `json:"control"`
		State         *string `json:"state"`
		Size          *string `json:"size"`
	} `json:"ipeds"`
	Carnegie *struct {
		ID                 string  `json:"id"`
		Classification2021 *string `json:"classification2021"`
		Classification2025 *string `json:"classification2025"`
	} `json:"carnegie"`
}

// scanInstitution reads one row of selectInstitution.
func scanInstitution(row pgx.Row) (Institution, error) {
	var (
		inst        Institution
		identifiers []byte
	)

	err := row.Scan(
		&inst.ID, &inst.PublicID, &inst.Name, &inst.Valid,
		&inst.Latitude, &inst.Longitude, &inst.State,
		&inst.CreatedAt, &inst.CreatedBy, &inst.UpdatedAt, &inst.UpdatedBy,
		&identifiers,
	)
	if err != nil {
		return Institution{}, err
	}

	var rows []identifierRow
	if err := json.Unmarshal(identifiers, &rows); err != nil {
		return Institution{}, fmt.Errorf("decode identifiers of %s: %w", inst.PublicID, err)
	}

	for _, row := range rows {
		kind, known := KindByTypeName(row.Type)
		if !known {
			continue
		}

		identifier := Identifier{ID: row.ID, Kind: kind, Value: row.Value}
		if row.IPEDS != nil {
			identifier.IPEDS = &IPEDSMetadata{
				ID:              row.IPEDS.ID,
				Website:         pointer.Val(row.IPEDS.Website),
				HBCU:            row.IPEDS.HBCU != nil && *row.IPEDS.HBCU,
				Tribal:          row.IPEDS.Tribal != nil && *row.IPEDS.Tribal,
				ProgramLength:   reference.ProgramLength(pointer.Val(row.IPEDS.ProgramLength)),
				Control:         reference.Control(pointer.Val(row.IPEDS.Control)),
				State:           pointer.Val(row.IPEDS.State),
				InstitutionSize: reference.InstitutionSize(pointer.Val(row.IPEDS.Size)),
			}
		}
		if row.Carnegie != nil {
			identifier.Carnegie = &CarnegieMetadata{
				ID:                 row.Carnegie.ID,
				Classification2021: row.Carnegie.Classification2021,
				Classification2025: row.Carnegie.Classification2025,
			}
		}
		inst.Identifiers = append(inst.Identifiers, identifier)
	}

	return inst.withIdentifiers(inst.Identifiers), nil
}

// # Reads

/*
ListValid returns every valid institution ordered by name.

Returns:
  - []Institution: Hydrated institutions, identifiers and metadata included
  - error: Database execution errors
*/
func (repository *postgresRepository) ListValid(context context.Context) ([]Institution, error) {
	query := selectInstitution + fmt.Sprintf(" WHERE i.%s ORDER BY i.%s", schema.Institution.Valid, schema.Institution.Name)

	rows, err := repository.pool.Query(context, query)
	if err != nil {
		return nil, dberr.Wrap(err, "list valid institutions")
	}
	defer rows.Close()

	institutions := make([]Institution, 0)
	for rows.Next() {
		inst, err := scanInstitution(rows)
		if err != nil {
			return nil, dberr.Wrap(err, "scan institution")
		}
		institutions = append(institutions, inst)
	}
	if err := rows.Err(); err != nil {
		return nil, dberr.Wrap(err, "iterate institutions")
	}

	return institutions, nil
}

// GetByPublicID returns an institution regardless of validity.
func (repository *postgresRepository) GetByPublicID(context context.Context, publicID string) (Institution, error) {
	query := selectInstitution + fmt.Sprintf(" WHERE i.%s = $1", schema.Institution.PublicID)

	inst, err := scanInstitution(repository.pool.QueryRow(context, query, publicID))
	if errors.Is(err, pgx.ErrNoRows) {
		return Institution{}, ErrNotFound
	}
	if err != nil {
		return Institution{}, dberr.Wrap(err, "get institution")
	}
	return inst, nil
}

// WithinTx runs fn inside one READ COMMITTED transaction.
func (repository *postgresRepository) WithinTx(context context.Context, fn func(tx Tx) error) error {
	err := postgres.WithTx(context, repository.pool, func(tx pgx.Tx) error {
		return fn(&postgresTx{tx: tx, repository: repository})
	})
	return dberr.WrapConstraint(err, "institution transaction", constraintErrors)
}

// identifierTypeIDs resolves the seeded identifier types once per process.
func (repository *postgresRepository) identifierTypeIDs(context context.Context, tx pgx.Tx) (map[IdentifierKind]string, error) {
	repository.typesMu.Lock()
	defer repository.typesMu.Unlock()

	if repository.typeIDs != nil {
		return repository.typeIDs, nil
	}

	query := fmt.Sprintf("SELECT %s, %s FROM %s",
		schema.IdentifierType.ID, schema.IdentifierType.Name, schema.IdentifierType.Table)

	rows, err := tx.Query(context, query)
	if err != nil {
		return nil, dberr.Wrap(err, "load identifier types")
	}
	defer rows.Close()

	ids := make(map[IdentifierKind]string, len(Kinds))
	for rows.Next() {
		var id, name string
		if err := rows.Scan(&id, &name); err != nil {
			return nil, dberr.Wrap(err, "scan identifier type")
		}
		if kind, known := KindByTypeName(name); known {
			ids[kind] = id
		}
	}
	if err := rows.Err(); err != nil {
		return nil, dberr.Wrap(err, "iterate identifier types")
	}

	for _, kind := range Kinds {
		if _, seeded := ids[kind]; !seeded {
			return nil, apperr.Internal(fmt.Errorf("identifier type %q is not seeded", kind.TypeName()))
		}
	}

	repository.typeIDs = ids
	return ids, nil
}

// # Transaction

// postgresTx implements [Tx] over an open pgx transaction.
type postgresTx struct {
	tx         pgx.Tx
	repository *postgresRepository
}

// lockAndLoad locks the institution matched by where and loads its aggregate.
func (transaction *postgresTx) lockAndLoad(context context.Context, where string, arg any) (Institution, error) {
	lock := fmt.Sprintf("SELECT %s FROM %s WHERE %s FOR UPDATE",
		schema.Institution.ID, schema.Institution.Table, where)

	var id string
	if err := transaction.tx.QueryRow(context, lock, arg).Scan(&id); err != nil {
		return Institution{}, err
	}

	query := selectInstitution + fmt.Sprintf(" WHERE i.%s = $1", schema.Institution.ID)
	return scanInstitution(transaction.tx.QueryRow(context, query, id))
}

func (transaction *postgresTx) FindInvalidByName(context context.Context, name string) (Institution, bool, error) {
	where := fmt.Sprintf("NOT %s AND %s = $1", schema.Institution.Valid, schema.Institution.Name)

	inst, err := transaction.lockAndLoad(context, where, name)
	if errors.Is(err, pgx.ErrNoRows) {
		return Institution{}, false, nil
	}
	if err != nil {
		return Institution{}, false, dberr.Wrap(err, "find invalid institution by name")
	}
	return inst, true, nil
}

func (transaction *postgresTx) FindByPublicIDForUpdate(context context.Context, publicID string) (Institution, error) {
	where := fmt.Sprintf("%s = $1", schema.Institution.PublicID)

	inst, err := transaction.lockAndLoad(context, where, publicID)
	if errors.Is(err, pgx.ErrNoRows) {
		return Institution{}, ErrNotFound
	}
	if err != nil {
		return Institution{}, dberr.Wrap(err, "find institution for update")
	}
	return inst, nil
}

func (transaction *postgresTx) PublicIDs(context context.Context) (map[string]struct{}, error) {
	query := fmt.Sprintf("SELECT %s FROM %s", schema.Institution.PublicID, schema.Institution.Table)

	rows, err := transaction.tx.Query(context, query)
	if err != nil {
		return nil, dberr.Wrap(err, "list public ids")
	}
	defer rows.Close()

	ids := make(map[string]struct{})
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, dberr.Wrap(err, "scan public id")
		}
		ids[id] = struct{}{}
	}
	return ids, dberr.Wrap(rows.Err(), "iterate public ids")
}

func (transaction *postgresTx) Insert(context context.Context, inst Institution) error {
	columns := schema.Institution.Columns()
	placeholders := make([]string, len(columns))
	for i := range columns {
		placeholders[i] = fmt.Sprintf("$%d", i+1)
	}

	query := fmt.Sprintf("INSERT INTO %s (%s) VALUES (%s)",
		schema.Institution.Table, strings.Join(columns, ", "), strings.Join(placeholders, ", "))

	_, err := transaction.tx.Exec(context, query,
		inst.ID, inst.PublicID, inst.Name, inst.Valid,
		inst.Latitude, inst.Longitude, inst.State,
		inst.CreatedAt, inst.CreatedBy, inst.UpdatedAt, inst.UpdatedBy,
	)
	return dberr.WrapConstraint(err, "insert institution", constraintErrors)
}

func (transaction *postgresTx) Update(context context.Context, inst Institution) error {
	query := fmt.Sprintf(`
		UPDATE %s
		SET %s = $2, %s = $3, %s = $4, %s = $5, %s = $6, %s = $7, %s = $8
		WHERE %s = $1`,
		schema.Institution.Table,
		schema.Institution.Name, schema.Institution.Valid,
		schema.Institution.Latitude, schema.Institution.Longitude, schema.Institution.State,
		schema.Institution.UpdatedAt, schema.Institution.UpdatedBy,
		schema.Institution.ID,
	)

	tag, err := transaction.tx.Exec(context, query,
		inst.ID, inst.Name, inst.Valid,
		inst.Latitude, inst.Longitude, inst.State,
		inst.UpdatedAt, inst.UpdatedBy,
	)
	if err != nil {
		return dberr.WrapConstraint(err, "update institution", constraintErrors)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

/*
ApplyIdentifiers executes a reconciliation plan.

Description: Deletes rely on ON DELETE CASCADE to drop the unit id's
metadata. Metadata writes are upserts keyed by the owning identifier, so
an in-place unit id change keeps the metadata row ids stable.
*/
func (transaction *postgresTx) ApplyIdentifiers(context context.Context, institutionID string, plan Plan) error {
	if plan.Empty() {
		return nil
	}

	typeIDs, err := transaction.repository.identifierTypeIDs(context, transaction.tx)
	if err != nil {
		return err
	}

	for _, op := range plan.Ops {
		identifier := op.Identifier

		switch op.Op {
		case OpDelete:
			query := fmt.Sprintf("DELETE FROM %s WHERE %s = $1 AND %s = $2",
				schema.InstitutionIdentifier.Table, schema.InstitutionIdentifier.ID, schema.InstitutionIdentifier.InstitutionID)
			_, err = transaction.tx.Exec(context, query, identifier.ID, institutionID)

		case OpInsert:
			query := fmt.Sprintf("INSERT INTO %s (%s, %s, %s, %s) VALUES ($1, $2, $3, $4)",
				schema.InstitutionIdentifier.Table,
				schema.InstitutionIdentifier.ID, schema.InstitutionIdentifier.InstitutionID,
				schema.InstitutionIdentifier.TypeID, schema.InstitutionIdentifier.Value)
			_, err = transaction.tx.Exec(context, query, identifier.ID, institutionID, typeIDs[identifier.Kind], identifier.Value)

		case OpUpdate:
			query := fmt.Sprintf("UPDATE %s SET %s = $2 WHERE %s = $1",
				schema.InstitutionIdentifier.Table, schema.InstitutionIdentifier.Value, schema.InstitutionIdentifier.ID)
			_, err = transaction.tx.Exec(context, query, identifier.ID, identifier.Value)
		}
		if err != nil {
			return dberr.WrapConstraint(err, "apply "+op.Op.String()+" "+identifier.Kind.TypeName(), constraintErrors)
		}

		if op.Op != OpDelete {
			if err := transaction.upsertMetadata(context, institutionID, identifier); err != nil {
				return err
			}
		}
	}

	return nil
}

func (transaction *postgresTx) upsertMetadata(context context.Context, institutionID string, identifier Identifier) error {
	if ipeds := identifier.IPEDS; ipeds != nil {
		query := fmt.Sprintf(`
			INSERT INTO %[1]s (%[2]s, %[3]s, %[4]s, %[5]s, %[6]s, %[7]s, %[8]s, %[9]s, %[10]s, %[11]s)
			VALUES ($1, $2, $3, $4, $5, $6, NULLIF($7, ''), NULLIF($8, ''), NULLIF($9, ''), NULLIF($10, ''))
			ON CONFLICT (%[4]s) DO UPDATE SET
				%[5]s = EXCLUDED.%[5]s, %[6]s = EXCLUDED.%[6]s, %[7]s = EXCLUDED.%[7]s,
				%[8]s = EXCLUDED.%[8]s, %[9]s = EXCLUDED.%[9]s, %[10]s = EXCLUDED.%[10]s, %[11]s = EXCLUDED.%[11]s`,
			schema.IPEDSMetadata.Table,
			schema.IPEDSMetadata.ID, schema.IPEDSMetadata.InstitutionID, schema.IPEDSMetadata.IdentifierID,
			schema.IPEDSMetadata.Website, schema.IPEDSMetadata.HBCU, schema.IPEDSMetadata.Tribal,
			schema.IPEDSMetadata.ProgramLength, schema.IPEDSMetadata.Control, schema.IPEDSMetadata.State,
			schema.IPEDSMetadata.InstitutionSize,
		)
		_, err := transaction.tx.Exec(context, query,
			ipeds.ID, institutionID, identifier.ID,
			pointer.NonEmpty(ipeds.Website), ipeds.HBCU, ipeds.Tribal,
			string(ipeds.ProgramLength), string(ipeds.Control), ipeds.State, string(ipeds.InstitutionSize),
		)
		if err != nil {
			return dberr.Wrap(err, "upsert ipeds metadata")
		}
	}

	if carnegie := identifier.Carnegie; carnegie != nil {
		query := fmt.Sprintf(`
			INSERT INTO %[1]s (%[2]s, %[3]s, %[4]s, %[5]s, %[6]s)
			VALUES ($1, $2, $3, $4, $5)
			ON CONFLICT (%[4]s) DO UPDATE SET %[5]s = EXCLUDED.%[5]s, %[6]s = EXCLUDED.%[6]s`,
			schema.CarnegieMetadata.Table,
			schema.CarnegieMetadata.ID, schema.CarnegieMetadata.InstitutionID, schema.CarnegieMetadata.IdentifierID,
			schema.CarnegieMetadata.Classification2021, schema.CarnegieMetadata.Classification2025,
		)
		_, err := transaction.tx.Exec(context, query,
			carnegie.ID, institutionID, identifier.ID,
			carnegie.Classification2021, carnegie.Classification2025,
		)
		if err != nil {
			return dberr.Wrap(err, "upsert carnegie metadata")
		}
	}

	return nil
}
