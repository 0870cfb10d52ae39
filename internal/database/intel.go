package database

import (
	"encoding/json"
	"time"

	"github.com/storypulse/storypulse/internal/model"
)

// ReplacePredictions swaps a story's prediction set for the latest ranking.
// Predictions have no stable identity across provider refreshes, so a full
// replace keeps the table consistent with the provider.
func (db *DB) ReplacePredictions(storyID int64, predictions []model.Prediction) error {
	tx, err := db.conn.Begin()
	if err != nil {
		return err
	}
	defer tx.Rollback()

	if _, err := tx.Exec("DELETE FROM predictions WHERE story_id = ?", storyID); err != nil {
		return err
	}
	for _, p := range predictions {
		if _, err := tx.Exec(
			`INSERT INTO predictions (story_id, prediction, probability, type, timeframe, rationale)
			VALUES (?, ?, ?, ?, ?, ?)`,
			storyID, p.Text, p.Probability, p.Type, p.Timeframe, p.Rationale,
		); err != nil {
			return err
		}
	}
	return tx.Commit()
}

// GetPredictionsForStory returns predictions ranked by probability.
func (db *DB) GetPredictionsForStory(storyID int64) ([]model.Prediction, error) {
	rows, err := db.conn.Query(
		`SELECT prediction, probability, type, timeframe, rationale
		FROM predictions WHERE story_id = ? ORDER BY probability DESC`, storyID,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var predictions []model.Prediction
	for rows.Next() {
		var p model.Prediction
		var ptype, rationale *string
		if err := rows.Scan(&p.Text, &p.Probability, &ptype, &p.Timeframe, &rationale); err != nil {
			return nil, err
		}
		if ptype != nil {
			p.Type = *ptype
		}
		if rationale != nil {
			p.Rationale = *rationale
		}
		predictions = append(predictions, p)
	}
	return predictions, rows.Err()
}

// ReplaceContradictions swaps a story's contradiction records.
func (db *DB) ReplaceContradictions(storyID int64, items []model.ContradictionItem) error {
	tx, err := db.conn.Begin()
	if err != nil {
		return err
	}
	defer tx.Rollback()

	if _, err := tx.Exec("DELETE FROM contradictions WHERE story_id = ?", storyID); err != nil {
		return err
	}
	for _, c := range items {
		if _, err := tx.Exec(
			`INSERT INTO contradictions (story_id, date, type, claim_a, claim_b, source_a, source_b)
			VALUES (?, ?, ?, ?, ?, ?, ?)`,
			storyID, c.Date.UTC().Format(dateFormat), c.Type, c.ClaimA, c.ClaimB, c.SourceA, c.SourceB,
		); err != nil {
			return err
		}
	}
	return tx.Commit()
}

// GetContradictionsForStory returns a story's contradiction records.
func (db *DB) GetContradictionsForStory(storyID int64) ([]model.ContradictionItem, error) {
	rows, err := db.conn.Query(
		`SELECT date, type, claim_a, claim_b, source_a, source_b
		FROM contradictions WHERE story_id = ? ORDER BY date ASC`, storyID,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var items []model.ContradictionItem
	for rows.Next() {
		var c model.ContradictionItem
		var dateStr string
		var sourceA, sourceB *string
		if err := rows.Scan(&dateStr, &c.Type, &c.ClaimA, &c.ClaimB, &sourceA, &sourceB); err != nil {
			return nil, err
		}
		if t, err := time.Parse(dateFormat, dateStr); err == nil {
			c.Date = t
		}
		if sourceA != nil {
			c.SourceA = *sourceA
		}
		if sourceB != nil {
			c.SourceB = *sourceB
		}
		items = append(items, c)
	}
	return items, rows.Err()
}

// ReplaceRelations swaps a story's cause-effect relations.
func (db *DB) ReplaceRelations(storyID int64, edges []model.CausalEdge) error {
	tx, err := db.conn.Begin()
	if err != nil {
		return err
	}
	defer tx.Rollback()

	if _, err := tx.Exec("DELETE FROM relations WHERE story_id = ?", storyID); err != nil {
		return err
	}
	for _, e := range edges {
		var sourcesJSON *string
		if len(e.SourceArticles) > 0 {
			data, err := json.Marshal(e.SourceArticles)
			if err != nil {
				return err
			}
			s := string(data)
			sourcesJSON = &s
		}
		if _, err := tx.Exec(
			`INSERT INTO relations (story_id, cause_text, effect_text, relation_type, confidence, source_articles)
			VALUES (?, ?, ?, ?, ?, ?)`,
			storyID, e.Cause, e.Effect, string(e.Relation), e.Confidence, sourcesJSON,
		); err != nil {
			return err
		}
	}
	return tx.Commit()
}

// GetRelationsForStory returns a story's cause-effect relations in insertion
// order.
func (db *DB) GetRelationsForStory(storyID int64) ([]model.CausalEdge, error) {
	rows, err := db.conn.Query(
		`SELECT cause_text, effect_text, relation_type, confidence, source_articles
		FROM relations WHERE story_id = ? ORDER BY id ASC`, storyID,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var edges []model.CausalEdge
	for rows.Next() {
		var e model.CausalEdge
		var relation string
		var sourcesJSON *string
		if err := rows.Scan(&e.Cause, &e.Effect, &relation, &e.Confidence, &sourcesJSON); err != nil {
			return nil, err
		}
		e.Relation = model.RelationType(relation)
		if sourcesJSON != nil {
			if err := json.Unmarshal([]byte(*sourcesJSON), &e.SourceArticles); err != nil {
				e.SourceArticles = nil
			}
		}
		edges = append(edges, e)
	}
	return edges, rows.Err()
}
