package database

import (
	"context"
	"testing"
	"wymiana-plikow/internal/models"

	"github.com/jaevor/go-nanoid"
	"github.com/stretchr/testify/require"
)

func createTestFile(t *testing.T, title string) *models.File {
	t.Helper()

	generateID, err := nanoid.Standard(21)
	require.NoError(t, err)
	id := generateID()

	var size int64 = 1234
	mime := "text/plain"

	file, err := testStore.CreateFile(context.Background(), CreateFileParams{
		ID:          id,
		Title:       title,
		Description: "opis testowy",
		StorageKey:  id,
		FileName:    "dokument.txt",
		SizeBytes:   &size,
		MimeType:    &mime,
	})
	require.NoError(t, err)
	require.NotNil(t, file)
	return file
}

func TestCreateAndGetFile(t *testing.T) {
	file := createTestFile(t, "Raport kwartalny")

	found, err := testStore.GetFileByID(context.Background(), file.ID)
	require.NoError(t, err)
	require.NotNil(t, found)
	require.Equal(t, "Raport kwartalny", found.Title)
	require.Equal(t, "opis testowy", found.Description)
	require.Equal(t, int64(0), found.DownloadCount)
	require.Equal(t, int64(0), found.EmailsSent)

	missing, err := testStore.GetFileByID(context.Background(), "nie_ma_takiego_pliku00")
	require.NoError(t, err)
	require.Nil(t, missing)
}

func TestSearchFilesByTitle(t *testing.T) {
	// Unikalny marker, żeby test nie zderzał się z rekordami innych testów
	marker := "SzukajkaQwerty"
	createTestFile(t, marker+" ABC")
	createTestFile(t, "abc "+marker)
	createTestFile(t, "zupełnie inny tytuł")

	// Wyszukiwanie bez rozróżniania wielkości liter
	results, err := testStore.SearchFilesByTitle(context.Background(), marker, 100, 0)
	require.NoError(t, err)
	require.Len(t, results, 2)

	results, err = testStore.SearchFilesByTitle(context.Background(), "szukajka", 100, 0)
	require.NoError(t, err)
	require.GreaterOrEqual(t, len(results), 2)

	// Brak trafień to pusta lista, nie błąd
	results, err = testStore.SearchFilesByTitle(context.Background(), "g-nie-istnieje-xyz", 100, 0)
	require.NoError(t, err)
	require.NotNil(t, results)
	require.Empty(t, results)
}

func TestSearchFilesByTitle_EmptyQueryReturnsAll(t *testing.T) {
	file := createTestFile(t, "Katalog pełny")

	results, err := testStore.SearchFilesByTitle(context.Background(), "", 1000, 0)
	require.NoError(t, err)

	var seen bool
	for _, f := range results {
		if f.ID == file.ID {
			seen = true
			break
		}
	}
	require.True(t, seen, "empty query should return the whole catalog")
}

func TestListFiles(t *testing.T) {
	file := createTestFile(t, "Wpis katalogowy")

	results, err := testStore.ListFiles(context.Background(), 1000, 0)
	require.NoError(t, err)

	var seen bool
	for _, f := range results {
		if f.ID == file.ID {
			seen = true
			break
		}
	}
	require.True(t, seen, "listing should contain every catalog record")

	// Paginacja obcina wynik
	page, err := testStore.ListFiles(context.Background(), 1, 0)
	require.NoError(t, err)
	require.Len(t, page, 1)
}

func TestIncrementCounters(t *testing.T) {
	file := createTestFile(t, "Licznik testowy")

	require.NoError(t, testStore.IncrementDownloadCount(context.Background(), file.ID))
	require.NoError(t, testStore.IncrementDownloadCount(context.Background(), file.ID))
	require.NoError(t, testStore.IncrementEmailsSent(context.Background(), file.ID))

	updated, err := testStore.GetFileByID(context.Background(), file.ID)
	require.NoError(t, err)
	require.Equal(t, int64(2), updated.DownloadCount)
	require.Equal(t, int64(1), updated.EmailsSent)
}

func TestDeleteFile(t *testing.T) {
	file := createTestFile(t, "Do usunięcia")

	deleted, err := testStore.DeleteFile(context.Background(), file.ID)
	require.NoError(t, err)
	require.True(t, deleted)

	found, err := testStore.GetFileByID(context.Background(), file.ID)
	require.NoError(t, err)
	require.Nil(t, found)

	// Ponowne usunięcie niczego nie znajduje
	deleted, err = testStore.DeleteFile(context.Background(), file.ID)
	require.NoError(t, err)
	require.False(t, deleted)
}

func TestFileExists(t *testing.T) {
	file := createTestFile(t, "Istniejący")

	exists, err := testStore.FileExists(context.Background(), file.ID)
	require.NoError(t, err)
	require.True(t, exists)

	exists, err = testStore.FileExists(context.Background(), "000000000000000000000")
	require.NoError(t, err)
	require.False(t, exists)
}
