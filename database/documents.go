package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/lib/pq"
	"github.com/siherrmann/nerval/core/pipeline"
	"github.com/siherrmann/nerval/helper"
	"github.com/siherrmann/nerval/model"
	loadSql "github.com/siherrmann/nerval/sql"
)

// DocumentsDBHandlerFunctions defines the interface for Documents database operations.
type DocumentsDBHandlerFunctions interface {
	InsertDocument(doc *model.Document) error
	SelectDocument(rid uuid.UUID) (*model.Document, error)
	SelectDocumentByName(folder string, name string) (*model.Document, error)
	SelectDocumentsByFolders(folders []string) ([]*model.Document, error)
	SelectFolders() ([]string, error)
	SelectDocumentsBySearch(searchTerm string, limit int) ([]*model.Document, error)
	DeleteDocument(rid uuid.UUID) error
	LoadDocument(ctx context.Context, doc *model.Document) (string, error)
}

var _ pipeline.DocumentSource = (*DocumentsDBHandler)(nil)

// DocumentsDBHandler stores source documents in Postgres and serves them to the pipeline
type DocumentsDBHandler struct {
	db *helper.Database
}

// NewDocumentsDBHandler creates a new documents database handler.
// It loads the document SQL functions and creates the table.
// If force is true, it reloads the SQL functions even if they already exist.
func NewDocumentsDBHandler(db *helper.Database, force bool) (*DocumentsDBHandler, error) {
	if db == nil {
		return nil, helper.NewError("database connection validation", fmt.Errorf("database connection is nil"))
	}

	documentsDbHandler := &DocumentsDBHandler{
		db: db,
	}

	err := loadSql.LoadAllSql(documentsDbHandler.db.Instance, force)
	if err != nil {
		return nil, helper.NewError("load documents sql", err)
	}

	err = documentsDbHandler.CreateTable()
	if err != nil {
		return nil, helper.NewError("create table", err)
	}

	db.Logger.Info("Initialized DocumentsDBHandler")

	return documentsDbHandler, nil
}

// CreateTable creates the 'documents' table with its indexes if it does not exist
func (h *DocumentsDBHandler) CreateTable() error {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	_, err := h.db.Instance.ExecContext(ctx, `SELECT init_documents();`)
	if err != nil {
		return helper.NewError("init documents", err)
	}

	h.db.Logger.Info("Checked/created table documents")

	return nil
}

// InsertDocument inserts a document or replaces the one with the same folder and name
func (h *DocumentsDBHandler) InsertDocument(doc *model.Document) error {
	row := h.db.Instance.QueryRow(
		`SELECT * FROM insert_document($1, $2, $3, $4, $5)`,
		doc.Folder,
		doc.Name,
		doc.Source,
		doc.Content,
		doc.Metadata,
	)

	err := scanDocument(row, doc)
	if err != nil {
		return helper.NewError("scan", err)
	}

	return nil
}

// SelectDocument retrieves a document by RID
func (h *DocumentsDBHandler) SelectDocument(rid uuid.UUID) (*model.Document, error) {
	doc := &model.Document{}
	row := h.db.Instance.QueryRow(
		`SELECT * FROM select_document($1)`,
		rid,
	)

	err := scanDocument(row, doc)
	if err != nil {
		return nil, helper.NewError("scan", err)
	}

	return doc, nil
}

// SelectDocumentByName retrieves a document by folder and name
func (h *DocumentsDBHandler) SelectDocumentByName(folder string, name string) (*model.Document, error) {
	return h.selectDocumentByName(context.Background(), folder, name)
}

func (h *DocumentsDBHandler) selectDocumentByName(ctx context.Context, folder string, name string) (*model.Document, error) {
	doc := &model.Document{}
	row := h.db.Instance.QueryRowContext(
		ctx,
		`SELECT * FROM select_document_by_name($1, $2)`,
		folder,
		name,
	)

	err := scanDocument(row, doc)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%w: %s/%s", pipeline.ErrDocumentNotFound, folder, name)
	}
	if err != nil {
		return nil, helper.NewError("scan", err)
	}

	return doc, nil
}

// SelectDocumentsByFolders retrieves the documents of the given folders ordered
// by folder and name. Without folders all documents are returned.
func (h *DocumentsDBHandler) SelectDocumentsByFolders(folders []string) ([]*model.Document, error) {
	rows, err := h.db.Instance.Query(
		`SELECT * FROM select_documents_by_folders($1)`,
		pq.Array(folders),
	)
	if err != nil {
		return nil, helper.NewError("query", err)
	}
	defer rows.Close()

	return scanDocuments(rows)
}

// SelectFolders returns the distinct folders in alphabetical order
func (h *DocumentsDBHandler) SelectFolders() ([]string, error) {
	rows, err := h.db.Instance.Query(`SELECT * FROM select_folders()`)
	if err != nil {
		return nil, helper.NewError("query", err)
	}
	defer rows.Close()

	folders := []string{}
	for rows.Next() {
		var folder string
		if err := rows.Scan(&folder); err != nil {
			return nil, helper.NewError("scan", err)
		}
		folders = append(folders, folder)
	}

	err = rows.Err()
	if err != nil {
		return nil, helper.NewError("rows error", err)
	}

	return folders, nil
}

// SelectDocumentsBySearch searches documents by name or folder
func (h *DocumentsDBHandler) SelectDocumentsBySearch(searchTerm string, limit int) ([]*model.Document, error) {
	rows, err := h.db.Instance.Query(
		`SELECT * FROM search_documents($1, $2)`,
		searchTerm,
		limit,
	)
	if err != nil {
		return nil, helper.NewError("query", err)
	}
	defer rows.Close()

	return scanDocuments(rows)
}

// DeleteDocument deletes a document by RID
func (h *DocumentsDBHandler) DeleteDocument(rid uuid.UUID) error {
	_, err := h.db.Instance.Exec(
		`SELECT delete_document($1)`,
		rid,
	)
	if err != nil {
		return helper.NewError("exec", err)
	}
	return nil
}

// LoadDocument returns the stored content of doc, looked up by folder and name
func (h *DocumentsDBHandler) LoadDocument(ctx context.Context, doc *model.Document) (string, error) {
	stored, err := h.selectDocumentByName(ctx, doc.Folder, doc.Name)
	if err != nil {
		return "", err
	}
	return stored.Content, nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanDocument(row rowScanner, doc *model.Document) error {
	return row.Scan(
		&doc.ID,
		&doc.RID,
		&doc.Folder,
		&doc.Name,
		&doc.Source,
		&doc.Content,
		&doc.Metadata,
		&doc.CreatedAt,
		&doc.UpdatedAt,
	)
}

func scanDocuments(rows *sql.Rows) ([]*model.Document, error) {
	documents := []*model.Document{}
	for rows.Next() {
		doc := &model.Document{}
		err := scanDocument(rows, doc)
		if err != nil {
			return nil, helper.NewError("scan", err)
		}
		documents = append(documents, doc)
	}

	err := rows.Err()
	if err != nil {
		return nil, helper.NewError("rows error", err)
	}

	return documents, nil
}
