package storage

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"time"

	"einsatzplan/internal/plan"
)

// UpsertEinsatz writes a full record, inserting or replacing by
// (org_id, id). Entry ids never collide across organizations.
func (s *Store) UpsertEinsatz(ctx context.Context, e plan.Einsatz, updatedAt time.Time) error {
	people, err := json.Marshal(e.PeopleList)
	if err != nil {
		return err
	}
	_, err = s.db.ExecContext(ctx,
		`INSERT INTO einsaetze(id, org_id, customer, location, note, date, start_time, end_time,
		                       duration_hours, people_count, people_list, status, created_at, updated_at)
		 VALUES(?,?,?,?,?,?,?,?,?,?,?,?,?,?)
		 ON CONFLICT(org_id, id) DO UPDATE SET
		   customer=excluded.customer, location=excluded.location, note=excluded.note,
		   date=excluded.date, start_time=excluded.start_time, end_time=excluded.end_time,
		   duration_hours=excluded.duration_hours, people_count=excluded.people_count,
		   people_list=excluded.people_list, status=excluded.status, updated_at=excluded.updated_at`,
		e.ID, e.OrgID, e.Customer, e.Location, e.Note, e.Date, e.Start, e.End,
		e.DurationHours, e.PeopleCount, string(people), string(e.Status),
		encodeTime(e.CreatedAt), encodeTime(updatedAt),
	)
	return err
}

// GetEinsatz fetches one record scoped to its organization.
func (s *Store) GetEinsatz(ctx context.Context, orgID, id string) (plan.Einsatz, error) {
	row := s.db.QueryRowContext(ctx,
		selectEinsatz+` WHERE org_id = ? AND id = ?`, orgID, id,
	)
	e, err := scanEinsatz(row)
	if errors.Is(err, sql.ErrNoRows) {
		return plan.Einsatz{}, ErrNotFound
	}
	return e, err
}

// ListEinsaetze returns an organization's records, newest first. The
// optional fromISO/toISO bounds (inclusive, "YYYY-MM-DD") narrow by date.
func (s *Store) ListEinsaetze(ctx context.Context, orgID, fromISO, toISO string) ([]plan.Einsatz, error) {
	q := selectEinsatz + ` WHERE org_id = ?`
	args := []any{orgID}
	if fromISO != "" {
		q += ` AND date >= ?`
		args = append(args, fromISO)
	}
	if toISO != "" {
		q += ` AND date <= ?`
		args = append(args, toISO)
	}
	q += ` ORDER BY created_at DESC, id`

	rows, err := s.db.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []plan.Einsatz
	for rows.Next() {
		e, err := scanEinsatz(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, e)
	}
	return out, rows.Err()
}

// PatchEinsatzStatus updates only the status column.
func (s *Store) PatchEinsatzStatus(ctx context.Context, orgID, id string, status plan.Status, updatedAt time.Time) error {
	res, err := s.db.ExecContext(ctx,
		`UPDATE einsaetze SET status = ?, updated_at = ? WHERE org_id = ? AND id = ?`,
		string(status), encodeTime(updatedAt), orgID, id,
	)
	if err != nil {
		return err
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return ErrNotFound
	}
	return nil
}

// DeleteEinsatz removes a record by id.
func (s *Store) DeleteEinsatz(ctx context.Context, orgID, id string) error {
	res, err := s.db.ExecContext(ctx,
		`DELETE FROM einsaetze WHERE org_id = ? AND id = ?`, orgID, id,
	)
	if err != nil {
		return err
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return ErrNotFound
	}
	return nil
}

const selectEinsatz = `SELECT id, org_id, customer, location, note, date, start_time, end_time,
       duration_hours, people_count, people_list, status, created_at FROM einsaetze`

type rowScanner interface {
	Scan(dest ...any) error
}

// scanEinsatz rebuilds the engine shape from a row. The crew list is
// defensively re-reconciled in case foreign writes bent the invariant.
func scanEinsatz(r rowScanner) (plan.Einsatz, error) {
	var e plan.Einsatz
	var peopleJSON, status, created string
	err := r.Scan(&e.ID, &e.OrgID, &e.Customer, &e.Location, &e.Note, &e.Date,
		&e.Start, &e.End, &e.DurationHours, &e.PeopleCount, &peopleJSON, &status, &created)
	if err != nil {
		return plan.Einsatz{}, err
	}

	var people []string
	if err := json.Unmarshal([]byte(peopleJSON), &people); err != nil {
		people = nil
	}
	e.PeopleCount = plan.ClampPeopleCount(e.PeopleCount)
	e.PeopleList = plan.ReconcilePeople(people, e.PeopleCount)
	e.Status = plan.ParseStatus(status)
	e.CreatedAt = decodeTime(created)
	return e, nil
}
