package mock

import (
	"context"

	"github.com/fwojciec/prospect"
)

var _ prospect.OutreachService = (*OutreachService)(nil)

// OutreachService is a mock implementation of prospect.OutreachService.
type OutreachService struct {
	CreateRecordFn func(ctx context.Context, record *prospect.OutreachRecord) (int, error)
	FindRecordsFn  func(ctx context.Context) ([]*prospect.OutreachRecord, error)
	UpdateRecordFn func(ctx context.Context, index int, upd prospect.OutreachUpdate) (*prospect.OutreachRecord, error)
}

func (s *OutreachService) CreateRecord(ctx context.Context, record *prospect.OutreachRecord) (int, error) {
	return s.CreateRecordFn(ctx, record)
}

func (s *OutreachService) FindRecords(ctx context.Context) ([]*prospect.OutreachRecord, error) {
	return s.FindRecordsFn(ctx)
}

func (s *OutreachService) UpdateRecord(ctx context.Context, index int, upd prospect.OutreachUpdate) (*prospect.OutreachRecord, error) {
	return s.UpdateRecordFn(ctx, index, upd)
}

var _ prospect.CorpusService = (*CorpusService)(nil)

// CorpusService is a mock implementation of prospect.CorpusService.
type CorpusService struct {
	SaveCorpusFn      func(ctx context.Context, corpus *prospect.Corpus) (*prospect.CorpusRecord, error)
	FindCorpusByURLFn func(ctx context.Context, baseURL string) (*prospect.CorpusRecord, error)
	FindCorporaFn     func(ctx context.Context, limit int) ([]*prospect.CorpusRecord, error)
	DeleteCorpusFn    func(ctx context.Context, id string) error
}

func (s *CorpusService) SaveCorpus(ctx context.Context, corpus *prospect.Corpus) (*prospect.CorpusRecord, error) {
	return s.SaveCorpusFn(ctx, corpus)
}

func (s *CorpusService) FindCorpusByURL(ctx context.Context, baseURL string) (*prospect.CorpusRecord, error) {
	return s.FindCorpusByURLFn(ctx, baseURL)
}

func (s *CorpusService) FindCorpora(ctx context.Context, limit int) ([]*prospect.CorpusRecord, error) {
	return s.FindCorporaFn(ctx, limit)
}

func (s *CorpusService) DeleteCorpus(ctx context.Context, id string) error {
	return s.DeleteCorpusFn(ctx, id)
}
