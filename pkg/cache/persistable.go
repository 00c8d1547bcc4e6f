package cache

import (
	"database/sql"
	"errors"
	"fmt"
	"reflect"
	"strings"

	"github.com/richard-senior/knockouts/internal/logger"
)

// errNotFound is returned by findByPrimaryKey when no row matches
var errNotFound = errors.New("record not found")

// Persistable is a struct whose tagged fields map onto a table.
//
// Fields are persisted when they carry a `dbtype` tag. The column name comes
// from the `column` tag (lower-cased field name otherwise), `primary:"true"`
// marks primary key columns and `index:"true"` adds an index.
type Persistable interface {
	GetTableName() string
	GetPrimaryKey() map[string]any
}

// createTable creates the table and indexes for obj if they do not exist
func createTable(db *sql.DB, obj Persistable) error {
	tableName := obj.GetTableName()
	createSQL := generateCreateTableSQL(obj, tableName)

	logger.Debug("Creating table with SQL", createSQL)

	if _, err := db.Exec(createSQL); err != nil {
		return fmt.Errorf("failed to create table %s: %w", tableName, err)
	}

	for _, query := range generateIndexSQL(obj, tableName) {
		logger.Debug("Creating index with SQL", query)
		if _, err := db.Exec(query); err != nil {
			logger.Warn("Failed to create index", err)
		}
	}
	return nil
}

// persistedFields returns the struct fields that map onto columns
func persistedFields(objType reflect.Type) []reflect.StructField {
	if objType.Kind() == reflect.Ptr {
		objType = objType.Elem()
	}
	var fields []reflect.StructField
	for i := 0; i < objType.NumField(); i++ {
		field := objType.Field(i)
		if !field.IsExported() || field.Tag.Get("dbtype") == "" {
			continue
		}
		fields = append(fields, field)
	}
	return fields
}

func columnName(field reflect.StructField) string {
	if name := field.Tag.Get("column"); name != "" {
		return name
	}
	return strings.ToLower(field.Name)
}

// generateCreateTableSQL generates CREATE TABLE SQL from struct tags
func generateCreateTableSQL(obj any, tableName string) string {
	var columns []string
	var primaryKeys []string

	for _, field := range persistedFields(reflect.TypeOf(obj)) {
		name := columnName(field)
		dbType := field.Tag.Get("dbtype")
		if field.Tag.Get("primary") == "true" {
			primaryKeys = append(primaryKeys, name)
			dbType = strings.TrimSpace(strings.ReplaceAll(dbType, "PRIMARY KEY", ""))
		}
		columns = append(columns, fmt.Sprintf("%s %s", name, dbType))
	}

	if len(primaryKeys) > 0 {
		columns = append(columns, fmt.Sprintf("PRIMARY KEY (%s)", strings.Join(primaryKeys, ", ")))
	}

	return fmt.Sprintf("CREATE TABLE IF NOT EXISTS %s (%s)", tableName, strings.Join(columns, ", "))
}

// generateIndexSQL generates index creation SQL from struct tags
func generateIndexSQL(obj any, tableName string) []string {
	var indexSQL []string
	for _, field := range persistedFields(reflect.TypeOf(obj)) {
		if field.Tag.Get("index") == "" {
			continue
		}
		name := columnName(field)
		indexName := fmt.Sprintf("idx_%s_%s", tableName, name)
		indexSQL = append(indexSQL, fmt.Sprintf("CREATE INDEX IF NOT EXISTS %s ON %s(%s)", indexName, tableName, name))
	}
	return indexSQL
}

// save inserts obj, or updates it when a row with the same primary key exists
func save(db *sql.DB, obj Persistable) error {
	found, err := exists(db, obj)
	if err != nil {
		return fmt.Errorf("failed to check existence: %w", err)
	}
	if found {
		return update(db, obj)
	}
	return insert(db, obj)
}

func insert(db *sql.DB, obj Persistable) error {
	tableName := obj.GetTableName()
	var columns, placeholders []string
	var values []any

	objValue := reflect.Indirect(reflect.ValueOf(obj))
	for _, field := range persistedFields(objValue.Type()) {
		columns = append(columns, columnName(field))
		placeholders = append(placeholders, "?")
		values = append(values, objValue.FieldByIndex(field.Index).Interface())
	}

	query := fmt.Sprintf("INSERT INTO %s (%s) VALUES (%s)",
		tableName, strings.Join(columns, ", "), strings.Join(placeholders, ", "))
	logger.Debug("Insert SQL", query)

	if _, err := db.Exec(query, values...); err != nil {
		return fmt.Errorf("failed to insert into %s: %w", tableName, err)
	}
	return nil
}

func update(db *sql.DB, obj Persistable) error {
	tableName := obj.GetTableName()
	var setPairs []string
	var values []any

	objValue := reflect.Indirect(reflect.ValueOf(obj))
	for _, field := range persistedFields(objValue.Type()) {
		if field.Tag.Get("primary") == "true" {
			continue
		}
		setPairs = append(setPairs, fmt.Sprintf("%s = ?", columnName(field)))
		values = append(values, objValue.FieldByIndex(field.Index).Interface())
	}

	whereClause, whereValues := buildWhereClause(obj.GetPrimaryKey())
	values = append(values, whereValues...)

	query := fmt.Sprintf("UPDATE %s SET %s WHERE %s", tableName, strings.Join(setPairs, ", "), whereClause)
	logger.Debug("Update SQL", query)

	if _, err := db.Exec(query, values...); err != nil {
		return fmt.Errorf("failed to update %s: %w", tableName, err)
	}
	return nil
}

func exists(db *sql.DB, obj Persistable) (bool, error) {
	tableName := obj.GetTableName()
	whereClause, values := buildWhereClause(obj.GetPrimaryKey())

	var count int
	query := fmt.Sprintf("SELECT COUNT(*) FROM %s WHERE %s", tableName, whereClause)
	if err := db.QueryRow(query, values...).Scan(&count); err != nil {
		return false, fmt.Errorf("failed to check existence in %s: %w", tableName, err)
	}
	return count > 0, nil
}

// findByPrimaryKey fills obj from the row matching its primary key
func findByPrimaryKey(db *sql.DB, obj Persistable) error {
	tableName := obj.GetTableName()
	columns, destinations := selectData(obj)
	whereClause, values := buildWhereClause(obj.GetPrimaryKey())

	query := fmt.Sprintf("SELECT %s FROM %s WHERE %s", strings.Join(columns, ", "), tableName, whereClause)
	logger.Debug("FindByPrimaryKey SQL", query)

	if err := db.QueryRow(query, values...).Scan(destinations...); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return errNotFound
		}
		return fmt.Errorf("failed to scan row from %s: %w", tableName, err)
	}
	return nil
}

func deleteRow(db *sql.DB, obj Persistable) error {
	tableName := obj.GetTableName()
	whereClause, values := buildWhereClause(obj.GetPrimaryKey())

	query := fmt.Sprintf("DELETE FROM %s WHERE %s", tableName, whereClause)
	if _, err := db.Exec(query, values...); err != nil {
		return fmt.Errorf("failed to delete from %s: %w", tableName, err)
	}
	return nil
}

// selectData returns column names and scan destinations for obj's fields
func selectData(obj any) ([]string, []any) {
	objValue := reflect.Indirect(reflect.ValueOf(obj))
	var columns []string
	var destinations []any
	for _, field := range persistedFields(objValue.Type()) {
		columns = append(columns, columnName(field))
		destinations = append(destinations, objValue.FieldByIndex(field.Index).Addr().Interface())
	}
	return columns, destinations
}

// buildWhereClause builds a WHERE clause from a primary key map
func buildWhereClause(primaryKey map[string]any) (string, []any) {
	var conditions []string
	var values []any
	for column, value := range primaryKey {
		conditions = append(conditions, fmt.Sprintf("%s = ?", column))
		values = append(values, value)
	}
	return strings.Join(conditions, " AND "), values
}
