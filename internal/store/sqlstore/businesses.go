package sqlstore

import (
	"context"
	"database/sql"
	"errors"

	"github.com/google/uuid"

	"leadscout/internal/store"
	"leadscout/models"
)

const businessColumns = `id, search_id, name, address, phone, website, rating, review_count, data_source, created_at`

func (s *Store) InsertBusinesses(ctx context.Context, businesses []models.Business) error {
	if len(businesses) == 0 {
		return nil
	}
	now := s.now()
	err := s.inTx(ctx, func(tx *sql.Tx) error {
		for i, b := range businesses {
			created := b.CreatedAt
			if created.IsZero() {
				created = now
			}
			_, err := s.exec(ctx, tx, `INSERT INTO businesses (id, search_id, name, address, phone, website, rating, review_count, data_source, sort_order, created_at)
			VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
				b.ID.String(), b.SearchID.String(), b.Name, b.Address, b.Phone, b.Website,
				b.Rating, b.ReviewCount, string(b.DataSource), i, created)
			if err != nil {
				return err
			}
		}
		return nil
	})
	return wrap(err, "insert businesses")
}

func (s *Store) InsertReviews(ctx context.Context, reviews []models.Review) error {
	if len(reviews) == 0 {
		return nil
	}
	now := s.now()
	err := s.inTx(ctx, func(tx *sql.Tx) error {
		for i, r := range reviews {
			created := r.CreatedAt
			if created.IsZero() {
				created = now
			}
			_, err := s.exec(ctx, tx, `INSERT INTO reviews (id, business_id, text, rating, author_name, sort_order, created_at)
			VALUES (?, ?, ?, ?, ?, ?, ?)`,
				r.ID.String(), r.BusinessID.String(), r.Text, r.Rating, r.AuthorName, i, created)
			if err != nil {
				return err
			}
		}
		return nil
	})
	return wrap(err, "insert reviews")
}

func (s *Store) InsertAnalysis(ctx context.Context, analysis *models.Analysis) error {
	if analysis.CreatedAt.IsZero() {
		analysis.CreatedAt = s.now()
	}
	_, err := s.exec(ctx, s.db, `INSERT INTO analyses (id, business_id, problem_type, urgency_score, summary, outreach_message, created_at)
	VALUES (?, ?, ?, ?, ?, ?, ?)`,
		analysis.ID.String(), analysis.BusinessID.String(), analysis.ProblemType, analysis.UrgencyScore,
		analysis.Summary, analysis.OutreachMessage, analysis.CreatedAt)
	return wrap(err, "insert analysis")
}

func scanBusiness(row scanner) (models.Business, error) {
	var (
		b      models.Business
		source string
	)
	err := row.Scan(&b.ID, &b.SearchID, &b.Name, &b.Address, &b.Phone, &b.Website,
		&b.Rating, &b.ReviewCount, &source, &b.CreatedAt)
	b.DataSource = models.DataSource(source)
	return b, err
}

func (s *Store) ListBusinesses(ctx context.Context, searchID uuid.UUID) ([]models.Business, error) {
	rows, err := s.query(ctx, s.db, `SELECT `+businessColumns+` FROM businesses WHERE search_id = ? ORDER BY sort_order, created_at`, searchID.String())
	if err != nil {
		return nil, wrap(err, "list businesses")
	}
	businesses := make([]models.Business, 0)
	for rows.Next() {
		b, err := scanBusiness(rows)
		if err != nil {
			rows.Close()
			return nil, wrap(err, "list businesses")
		}
		businesses = append(businesses, b)
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return nil, wrap(err, "list businesses")
	}

	index := make(map[uuid.UUID]int, len(businesses))
	for i, b := range businesses {
		index[b.ID] = i
	}
	sub := `SELECT id FROM businesses WHERE search_id = ?`
	if err := s.attachReviews(ctx, `business_id IN (`+sub+`)`, searchID.String(), businesses, index); err != nil {
		return nil, err
	}
	if err := s.attachAnalyses(ctx, `business_id IN (`+sub+`)`, searchID.String(), businesses, index); err != nil {
		return nil, err
	}
	return businesses, nil
}

func (s *Store) GetBusiness(ctx context.Context, id uuid.UUID) (*models.Business, error) {
	row := s.db.QueryRowContext(ctx, s.rebind(`SELECT `+businessColumns+` FROM businesses WHERE id = ?`), id.String())
	b, err := scanBusiness(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, store.NotFound("business", id)
	}
	if err != nil {
		return nil, wrap(err, "get business")
	}
	businesses := []models.Business{b}
	index := map[uuid.UUID]int{b.ID: 0}
	if err := s.attachReviews(ctx, `business_id = ?`, id.String(), businesses, index); err != nil {
		return nil, err
	}
	if err := s.attachAnalyses(ctx, `business_id = ?`, id.String(), businesses, index); err != nil {
		return nil, err
	}
	return &businesses[0], nil
}

func (s *Store) attachReviews(ctx context.Context, where string, arg interface{}, businesses []models.Business, index map[uuid.UUID]int) error {
	rows, err := s.query(ctx, s.db, `SELECT id, business_id, text, rating, author_name, created_at FROM reviews WHERE `+where+` ORDER BY sort_order, created_at`, arg)
	if err != nil {
		return wrap(err, "load reviews")
	}
	defer rows.Close()
	for rows.Next() {
		var r models.Review
		if err := rows.Scan(&r.ID, &r.BusinessID, &r.Text, &r.Rating, &r.AuthorName, &r.CreatedAt); err != nil {
			return wrap(err, "load reviews")
		}
		if i, ok := index[r.BusinessID]; ok {
			businesses[i].Reviews = append(businesses[i].Reviews, r)
		}
	}
	return wrap(rows.Err(), "load reviews")
}

func (s *Store) attachAnalyses(ctx context.Context, where string, arg interface{}, businesses []models.Business, index map[uuid.UUID]int) error {
	rows, err := s.query(ctx, s.db, `SELECT id, business_id, problem_type, urgency_score, summary, outreach_message, created_at FROM analyses WHERE `+where, arg)
	if err != nil {
		return wrap(err, "load analyses")
	}
	defer rows.Close()
	for rows.Next() {
		var a models.Analysis
		if err := rows.Scan(&a.ID, &a.BusinessID, &a.ProblemType, &a.UrgencyScore, &a.Summary, &a.OutreachMessage, &a.CreatedAt); err != nil {
			return wrap(err, "load analyses")
		}
		if i, ok := index[a.BusinessID]; ok {
			businesses[i].Analysis = &a
		}
	}
	return wrap(rows.Err(), "load analyses")
}
