package store_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/panplumousse-star/AIScan-sub002/internal/models"
	"github.com/panplumousse-star/AIScan-sub002/internal/store"
)

func seedSearchDocs(t *testing.T, s *store.Store) (invoice, lease *models.Document) {
	t.Helper()

	ocr := "electricity usage for march, total 84.20"
	invoice = &models.Document{
		Title:       "Utility invoice",
		Description: "monthly bill",
		PageCount:   1,
		OCRText:     &ocr,
		OCRStatus:   models.OCRCompleted,
	}
	require.NoError(t, s.CreateDocument(invoice, nil))

	lease = &models.Document{
		Title:       "Apartment lease",
		Description: "signed rental contract",
		PageCount:   12,
	}
	require.NoError(t, s.CreateDocument(lease, nil))

	return invoice, lease
}

// runSearchSuite exercises behavior every tier must share.
func runSearchSuite(t *testing.T, s *store.Store) {
	invoice, lease := seedSearchDocs(t, s)

	t.Run("empty query returns nothing", func(t *testing.T) {
		docs, err := s.Search("   ", models.SearchFilters{})
		require.NoError(t, err)
		assert.Empty(t, docs)
	})

	t.Run("matches title", func(t *testing.T) {
		docs, err := s.Search("lease", models.SearchFilters{})
		require.NoError(t, err)
		require.Len(t, docs, 1)
		assert.Equal(t, lease.ID, docs[0].ID)
	})

	t.Run("matches description", func(t *testing.T) {
		docs, err := s.Search("rental", models.SearchFilters{})
		require.NoError(t, err)
		require.Len(t, docs, 1)
		assert.Equal(t, lease.ID, docs[0].ID)
	})

	t.Run("matches recognized text", func(t *testing.T) {
		docs, err := s.Search("electricity", models.SearchFilters{})
		require.NoError(t, err)
		require.Len(t, docs, 1)
		assert.Equal(t, invoice.ID, docs[0].ID)
	})

	t.Run("no match", func(t *testing.T) {
		docs, err := s.Search("passport", models.SearchFilters{})
		require.NoError(t, err)
		assert.Empty(t, docs)
	})

	t.Run("limit applies", func(t *testing.T) {
		docs, err := s.Search("a", models.SearchFilters{Limit: 1})
		require.NoError(t, err)
		assert.LessOrEqual(t, len(docs), 1)
	})

	t.Run("update is visible immediately", func(t *testing.T) {
		doc, err := s.GetDocument(lease.ID)
		require.NoError(t, err)
		doc.Title = "Garage lease"
		require.NoError(t, s.UpdateDocument(doc))

		docs, err := s.Search("garage", models.SearchFilters{})
		require.NoError(t, err)
		require.Len(t, docs, 1)
		assert.Equal(t, lease.ID, docs[0].ID)

		docs, err = s.Search("apartment", models.SearchFilters{})
		require.NoError(t, err)
		assert.Empty(t, docs, "stale text must not match")
	})

	t.Run("delete removes from results", func(t *testing.T) {
		require.NoError(t, s.DeleteDocument(invoice.ID))

		docs, err := s.Search("electricity", models.SearchFilters{})
		require.NoError(t, err)
		assert.Empty(t, docs)
	})
}

func TestSearchRanked(t *testing.T) {
	s := openTestStore(t)
	if s.Tier() != store.TierRanked {
		t.Skipf("engine offers %s tier only", s.Tier())
	}
	runSearchSuite(t, s)
}

func TestSearchBasic(t *testing.T) {
	s := openTestStore(t, store.WithMaxTier(store.TierBasic))
	if s.Tier() != store.TierBasic {
		t.Skipf("engine offers %s tier only", s.Tier())
	}
	runSearchSuite(t, s)
}

func TestSearchSubstringFallback(t *testing.T) {
	s := openTestStore(t, store.WithMaxTier(store.TierNone))
	require.Equal(t, store.TierNone, s.Tier())
	runSearchSuite(t, s)
}

func TestSearchMultiWordAllMustMatch(t *testing.T) {
	s := openTestStore(t)
	if s.Tier() == store.TierNone {
		t.Skip("no word-level index available")
	}

	seedSearchDocs(t, s)

	docs, err := s.Search("monthly bill", models.SearchFilters{})
	require.NoError(t, err)
	assert.Len(t, docs, 1)

	docs, err = s.Search("monthly passport", models.SearchFilters{})
	require.NoError(t, err)
	assert.Empty(t, docs, "one missing word must exclude the document")
}

func TestSearchQuerySyntaxIsLiteral(t *testing.T) {
	s := openTestStore(t)

	seedSearchDocs(t, s)

	// Operator-looking input must not be interpreted or error out.
	for _, q := range []string{`lease OR invoice`, `"lease`, `lease*`, `NOT lease`} {
		_, err := s.Search(q, models.SearchFilters{})
		assert.NoError(t, err, "query %q", q)
	}
}

func TestSearchWildcardsAreLiteral(t *testing.T) {
	s := openTestStore(t, store.WithMaxTier(store.TierNone))

	require.NoError(t, s.CreateDocument(&models.Document{
		Title: "100% cotton care label", PageCount: 1,
	}, nil))
	require.NoError(t, s.CreateDocument(&models.Document{
		Title: "plain shirt", PageCount: 1,
	}, nil))

	docs, err := s.Search("100%", models.SearchFilters{})
	require.NoError(t, err)
	require.Len(t, docs, 1, "percent must match literally, not as a wildcard")
	assert.Equal(t, "100% cotton care label", docs[0].Title)
}

func TestSearchFilters(t *testing.T) {
	s := openTestStore(t)

	folder := &models.Folder{Name: "Home"}
	require.NoError(t, s.CreateFolder(folder))

	require.NoError(t, s.CreateDocument(&models.Document{
		Title: "insurance policy", PageCount: 1, IsFavorite: true,
	}, nil))
	require.NoError(t, s.CreateDocument(&models.Document{
		Title: "insurance claim", PageCount: 1, FolderID: &folder.ID,
	}, nil))

	docs, err := s.Search("insurance", models.SearchFilters{})
	require.NoError(t, err)
	assert.Len(t, docs, 2)

	docs, err = s.Search("insurance", models.SearchFilters{FavoritesOnly: true})
	require.NoError(t, err)
	require.Len(t, docs, 1)
	assert.Equal(t, "insurance policy", docs[0].Title)

	docs, err = s.Search("insurance", models.SearchFilters{FolderID: &folder.ID})
	require.NoError(t, err)
	require.Len(t, docs, 1)
	assert.Equal(t, "insurance claim", docs[0].Title)
}

func TestRebuildIndex(t *testing.T) {
	s := openTestStore(t)

	seedSearchDocs(t, s)
	require.NoError(t, s.RebuildIndex())

	docs, err := s.Search("lease", models.SearchFilters{})
	require.NoError(t, err)
	assert.Len(t, docs, 1)
}
