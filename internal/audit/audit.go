package audit

import (
	"database/sql"
	"time"

	"go.uber.org/zap"

	"dice-settle/internal/logger"
)

type Record struct {
	Actor     string `json:"actor"`
	Action    string `json:"action"`
	Metadata  string `json:"metadata"`
	CreatedAt int64  `json:"created_at"`
}

type Service struct {
	db *sql.DB
}

func New(db *sql.DB) *Service {
	return &Service{db: db}
}

func (s *Service) Log(actor string, action string, metadata string) {

	_, err := s.db.Exec(`
	INSERT INTO audit_logs(actor, action, metadata, created_at)
	VALUES (?, ?, ?, ?)
	`, actor, action, metadata, time.Now().Unix())
	if err != nil {
		logger.Log.Warn("audit write failed", zap.String("action", action), zap.Error(err))
	}
}

func (s *Service) List(actor string) ([]Record, error) {
	rows, err := s.db.Query(`
	SELECT actor, action, metadata, created_at FROM audit_logs
	WHERE actor=? ORDER BY id
	`, actor)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []Record
	for rows.Next() {
		var r Record
		if err := rows.Scan(&r.Actor, &r.Action, &r.Metadata, &r.CreatedAt); err != nil {
			return nil, err
		}
		out = append(out, r)
	}
	return out, rows.Err()
}
