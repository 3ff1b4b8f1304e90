package services

import (
	"context"
	"log"
	"time"

	"github.com/google/uuid"

	"jsonnorm/internal/models"
	"jsonnorm/internal/normalizer"
	"jsonnorm/internal/repositories"
)

// LoadService orchestrates a full run: normalize the document, create the
// generated tables in dependency order, insert rows with the sink's
// widen-and-retry, and record the run in load_runs.
type LoadService struct {
	tableRepo *repositories.TableRepository
	runRepo   *repositories.RunRepository
	schema    string
}

func NewLoadService(tableRepo *repositories.TableRepository, runRepo *repositories.RunRepository, schema string) *LoadService {
	return &LoadService{
		tableRepo: tableRepo,
		runRepo:   runRepo,
		schema:    schema,
	}
}

type LoadResult struct {
	RunID      uuid.UUID `json:"run_id"`
	Schema     string    `json:"schema"`
	Order      []string  `json:"order"`
	TableCount int       `json:"table_count"`
	RowCount   int       `json:"row_count"`
	// IDMaps maps each table's in-memory surrogate keys to the identity
	// values the database assigned.
	IDMaps map[string]map[int]int `json:"id_maps"`
}

func (s *LoadService) Load(ctx context.Context, req *NormalizeRequest) (*LoadResult, error) {
	run := &models.LoadRun{RootTable: req.RootName}
	if err := s.runRepo.Create(run); err != nil {
		return nil, err
	}

	dataset, err := normalizer.Normalize(req.Document, req.RootName)
	if err != nil {
		s.markFailed(run, err)
		return nil, err
	}

	idMaps, err := s.loadDataset(ctx, dataset)
	if err != nil {
		s.markFailed(run, err)
		return nil, err
	}

	tableCount := len(dataset.Order)
	rowCount := dataset.RowCount()
	now := time.Now()
	run.Status = models.LoadRunCompleted
	run.TableCount = &tableCount
	run.RowCount = &rowCount
	run.FinishedAt = &now
	if err := s.runRepo.Finish(run); err != nil {
		log.Printf("Failed to record load run %s completion: %v", run.ID, err)
	}

	return &LoadResult{
		RunID:      run.ID,
		Schema:     s.schema,
		Order:      dataset.Order,
		TableCount: tableCount,
		RowCount:   rowCount,
		IDMaps:     idMaps,
	}, nil
}

// loadDataset walks tables in dependency order, so every parent's identity
// values exist before any child row needs to reference them.
func (s *LoadService) loadDataset(ctx context.Context, dataset *models.Dataset) (map[string]map[int]int, error) {
	if err := s.tableRepo.EnsureSchema(ctx, s.schema); err != nil {
		return nil, err
	}

	idMaps := make(map[string]map[int]int, len(dataset.Order))
	for _, name := range dataset.Order {
		t := dataset.Tables[name]
		if err := s.tableRepo.CreateTable(ctx, s.schema, t); err != nil {
			return nil, err
		}

		var parentIDs map[int]int
		if t.ForeignKey != nil {
			parentIDs = idMaps[t.ForeignKey.RefTable]
		}
		ids, err := s.tableRepo.InsertRows(ctx, s.schema, t, parentIDs)
		if err != nil {
			return nil, err
		}
		idMaps[name] = ids
	}
	return idMaps, nil
}

func (s *LoadService) History(limit int) ([]models.LoadRun, error) {
	return s.runRepo.List(limit)
}

func (s *LoadService) markFailed(run *models.LoadRun, cause error) {
	msg := cause.Error()
	now := time.Now()
	run.Status = models.LoadRunFailed
	run.Error = &msg
	run.FinishedAt = &now
	if err := s.runRepo.Finish(run); err != nil {
		log.Printf("Failed to record load run %s failure: %v", run.ID, err)
	}
}
