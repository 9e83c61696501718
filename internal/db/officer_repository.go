package db

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"civiguard-backend-go/internal/models"
)

// csvOfficerRepository reads department contacts from a CSV file with the
// header Department,Officer Name,Email. The file is read on every call so
// edits show up without a restart.
type csvOfficerRepository struct {
	path string
}

func NewCSVOfficerRepository(path string) OfficerRepository {
	return &csvOfficerRepository{path: path}
}

func (r *csvOfficerRepository) List(_ context.Context) ([]models.Officer, error) {
	f, err := os.Open(r.path)
	if err != nil {
		return nil, fmt.Errorf("failed to open officers file '%s': %w", r.path, err)
	}
	defer f.Close()
	return parseOfficers(f)
}

func parseOfficers(in io.Reader) ([]models.Officer, error) {
	reader := csv.NewReader(in)
	reader.TrimLeadingSpace = true
	reader.FieldsPerRecord = -1

	header, err := reader.Read()
	if errors.Is(err, io.EOF) {
		return []models.Officer{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read officers header: %w", err)
	}

	columns := map[string]int{}
	for i, name := range header {
		columns[strings.ToLower(strings.TrimSpace(strings.TrimPrefix(name, "\ufeff")))] = i
	}
	deptCol, okDept := columns["department"]
	nameCol, okName := columns["officer name"]
	emailCol, okEmail := columns["email"]
	if !okDept || !okName || !okEmail {
		return nil, fmt.Errorf("officers file must have Department, Officer Name and Email columns, got %v", header)
	}

	field := func(record []string, col int) string {
		if col < len(record) {
			return strings.TrimSpace(record[col])
		}
		return ""
	}

	officers := make([]models.Officer, 0)
	for {
		record, err := reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("failed to read officers row: %w", err)
		}
		officer := models.Officer{
			Department: field(record, deptCol),
			Name:       field(record, nameCol),
			Email:      field(record, emailCol),
		}
		if officer.Email == "" && officer.Name == "" && officer.Department == "" {
			continue
		}
		officers = append(officers, officer)
	}
	return officers, nil
}
