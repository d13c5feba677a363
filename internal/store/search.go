package store

import (
	"strings"

	"golang.org/x/text/unicode/norm"

	"github.com/panplumousse-star/AIScan-sub002/internal/models"
)

// Search returns documents matching query, ordered by relevance when the
// engine ranks, otherwise by last update. The empty query returns an
// empty result set without touching the index.
func (s *Store) Search(query string, filters models.SearchFilters) ([]models.Document, error) {
	q := norm.NFKC.String(strings.TrimSpace(query))
	if q == "" {
		return []models.Document{}, nil
	}

	switch s.tier {
	case TierRanked:
		return s.searchRanked(q, filters)
	case TierBasic:
		return s.searchBasic(q, filters)
	default:
		return s.searchSubstring(q, filters)
	}
}

// searchRanked queries the FTS5 index and orders by the engine's
// relevance rank (lower = more relevant).
func (s *Store) searchRanked(query string, filters models.SearchFilters) ([]models.Document, error) {
	sql := `
        SELECT ` + qualifyColumns("d") + `
        FROM documents_fts f
        JOIN documents d ON d.rowid = f.rowid
        WHERE documents_fts MATCH ?`
	args := []interface{}{matchExpression(query)}

	where, filterArgs := filterClauses("d.", filters)
	if where != "" {
		sql += " AND " + where
		args = append(args, filterArgs...)
	}
	sql += " ORDER BY f.rank"
	if filters.Limit > 0 {
		sql += " LIMIT ?"
		args = append(args, filters.Limit)
	}

	rows, err := s.db.Query(sql, args...)
	if err != nil {
		return nil, &models.StorageError{Op: "search ranked", Err: err}
	}
	defer rows.Close()

	return collectDocuments(rows)
}

// searchBasic queries the FTS4 index; with no native ranking, recency is
// the stable fallback ordering.
func (s *Store) searchBasic(query string, filters models.SearchFilters) ([]models.Document, error) {
	sql := `
        SELECT ` + qualifyColumns("d") + `
        FROM documents_fts f
        JOIN documents d ON d.rowid = f.docid
        WHERE documents_fts MATCH ?`
	args := []interface{}{matchExpression(query)}

	where, filterArgs := filterClauses("d.", filters)
	if where != "" {
		sql += " AND " + where
		args = append(args, filterArgs...)
	}
	sql += " ORDER BY d.updated_at DESC"
	if filters.Limit > 0 {
		sql += " LIMIT ?"
		args = append(args, filters.Limit)
	}

	rows, err := s.db.Query(sql, args...)
	if err != nil {
		return nil, &models.StorageError{Op: "search basic", Err: err}
	}
	defer rows.Close()

	return collectDocuments(rows)
}

// searchSubstring is the no-index fallback: a case-insensitive LIKE scan
// treating the whole query as one literal substring.
func (s *Store) searchSubstring(query string, filters models.SearchFilters) ([]models.Document, error) {
	pattern := "%" + escapeLike(strings.ToLower(query)) + "%"

	sql := `
        SELECT ` + documentColumns + `
        FROM documents
        WHERE (lower(title) LIKE ? ESCAPE '\'
            OR lower(description) LIKE ? ESCAPE '\'
            OR lower(coalesce(ocr_text, '')) LIKE ? ESCAPE '\')`
	args := []interface{}{pattern, pattern, pattern}

	where, filterArgs := filterClauses("", filters)
	if where != "" {
		sql += " AND " + where
		args = append(args, filterArgs...)
	}
	sql += " ORDER BY updated_at DESC"
	if filters.Limit > 0 {
		sql += " LIMIT ?"
		args = append(args, filters.Limit)
	}

	rows, err := s.db.Query(sql, args...)
	if err != nil {
		return nil, &models.StorageError{Op: "search substring", Err: err}
	}
	defer rows.Close()

	return collectDocuments(rows)
}

// matchExpression turns free text into a MATCH expression where every
// term must match. Terms are quoted so user input cannot inject index
// query syntax.
func matchExpression(query string) string {
	terms := strings.Fields(query)
	quoted := make([]string, 0, len(terms))
	for _, term := range terms {
		quoted = append(quoted, `"`+strings.ReplaceAll(term, `"`, `""`)+`"`)
	}
	return strings.Join(quoted, " ")
}

// escapeLike escapes LIKE wildcards so the query is a literal substring.
func escapeLike(s string) string {
	s = strings.ReplaceAll(s, `\`, `\\`)
	s = strings.ReplaceAll(s, `%`, `\%`)
	s = strings.ReplaceAll(s, `_`, `\_`)
	return s
}

func qualifyColumns(alias string) string {
	cols := strings.Split(documentColumns, ",")
	for i, c := range cols {
		cols[i] = alias + "." + strings.TrimSpace(c)
	}
	return strings.Join(cols, ", ")
}
