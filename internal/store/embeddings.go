package store

import (
	"database/sql"
	"encoding/json"
	"fmt"
)

// RecordEmbedding is a stored vector for one knowledge base record.
type RecordEmbedding struct {
	RecordType string
	RecordID   string
	Text       string
	Embedding  []float64
}

// SaveEmbedding upserts the vector for a record.
func (s *Store) SaveEmbedding(recordType, recordID, text string, embedding []float64) error {
	blob, err := json.Marshal(embedding)
	if err != nil {
		return fmt.Errorf("failed to encode embedding: %w", err)
	}
	_, err = s.db.Exec(`
		INSERT INTO record_embeddings (record_type, record_id, text, embedding)
		VALUES (?, ?, ?, ?)
		ON CONFLICT(record_type, record_id) DO UPDATE SET text = excluded.text, embedding = excluded.embedding`,
		recordType, recordID, text, blob)
	if err != nil {
		return fmt.Errorf("failed to save embedding: %w", err)
	}
	return nil
}

// AllEmbeddings loads every stored vector for a full-scan similarity
// search. Fine at personal knowledge base scale.
func (s *Store) AllEmbeddings() ([]*RecordEmbedding, error) {
	rows, err := s.db.Query(`SELECT record_type, record_id, text, embedding FROM record_embeddings`)
	if err != nil {
		return nil, fmt.Errorf("failed to query embeddings: %w", err)
	}
	defer rows.Close()
	return scanEmbeddings(rows)
}

func scanEmbeddings(rows *sql.Rows) ([]*RecordEmbedding, error) {
	var out []*RecordEmbedding
	for rows.Next() {
		var e RecordEmbedding
		var blob []byte
		if err := rows.Scan(&e.RecordType, &e.RecordID, &e.Text, &blob); err != nil {
			return nil, fmt.Errorf("failed to scan embedding: %w", err)
		}
		if len(blob) > 0 {
			if err := json.Unmarshal(blob, &e.Embedding); err != nil {
				continue
			}
		}
		out = append(out, &e)
	}
	return out, nil
}
