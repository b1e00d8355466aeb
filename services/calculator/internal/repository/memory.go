package repository

import (
	"cmp"
	"context"
	"slices"
	"sync"

	"example.com/price-calculator/services/calculator/internal/domain"
)

// MemoryStore хранит товары и расчёты в памяти процесса.
// Реализует transaction.Scope: транзакции выполняются по одной,
// при ошибке состояние восстанавливается из снимка.
type MemoryStore struct {
	txMu sync.Mutex

	mu                sync.RWMutex
	goods             map[int64]domain.Good
	calculations      map[int64]domain.Calculation
	nextGoodID        int64
	nextCalculationID int64
}

// NewMemoryStore создаёт пустое хранилище.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		goods:        make(map[int64]domain.Good),
		calculations: make(map[int64]domain.Calculation),
	}
}

// Goods возвращает хранилище товаров поверх MemoryStore.
func (s *MemoryStore) Goods() GoodsRepository {
	return &memoryGoods{store: s}
}

// Calculations возвращает хранилище расчётов поверх MemoryStore.
func (s *MemoryStore) Calculations() CalculationsRepository {
	return &memoryCalculations{store: s}
}

type memoryTxKey struct{}

// Execute выполняет fn атомарно относительно других транзакций MemoryStore.
func (s *MemoryStore) Execute(ctx context.Context, fn func(ctx context.Context) error) error {
	if owner, ok := ctx.Value(memoryTxKey{}).(*MemoryStore); ok && owner == s {
		return fn(ctx)
	}

	s.txMu.Lock()
	defer s.txMu.Unlock()

	snap := s.snapshot()
	committed := false
	defer func() {
		if !committed {
			s.restore(snap)
		}
	}()

	if err := fn(context.WithValue(ctx, memoryTxKey{}, s)); err != nil {
		return err
	}
	committed = true
	return nil
}

type memorySnapshot struct {
	goods             map[int64]domain.Good
	calculations      map[int64]domain.Calculation
	nextGoodID        int64
	nextCalculationID int64
}

func (s *MemoryStore) snapshot() memorySnapshot {
	s.mu.RLock()
	defer s.mu.RUnlock()

	snap := memorySnapshot{
		goods:             make(map[int64]domain.Good, len(s.goods)),
		calculations:      make(map[int64]domain.Calculation, len(s.calculations)),
		nextGoodID:        s.nextGoodID,
		nextCalculationID: s.nextCalculationID,
	}
	for id, g := range s.goods {
		snap.goods[id] = g
	}
	for id, c := range s.calculations {
		snap.calculations[id] = c
	}
	return snap
}

func (s *MemoryStore) restore(snap memorySnapshot) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.goods = snap.goods
	s.calculations = snap.calculations
	s.nextGoodID = snap.nextGoodID
	s.nextCalculationID = snap.nextCalculationID
}

// Counts возвращает количество товаров и расчётов.
func (s *MemoryStore) Counts() (goods, calculations int) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.goods), len(s.calculations)
}

// =============================================================================
// Товары
// =============================================================================

type memoryGoods struct {
	store *MemoryStore
}

func (r *memoryGoods) Add(ctx context.Context, goods []domain.Good) ([]int64, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	s := r.store
	s.mu.Lock()
	defer s.mu.Unlock()

	ids := make([]int64, len(goods))
	for i, g := range goods {
		s.nextGoodID++
		g.ID = s.nextGoodID
		s.goods[g.ID] = g
		ids[i] = g.ID
	}
	return ids, nil
}

func (r *memoryGoods) Query(ctx context.Context, userID int64) ([]domain.Good, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	s := r.store
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := []domain.Good{}
	for _, g := range s.goods {
		if g.UserID == userID {
			out = append(out, g)
		}
	}
	slices.SortFunc(out, func(a, b domain.Good) int {
		return cmp.Compare(a.ID, b.ID)
	})
	return out, nil
}

func (r *memoryGoods) Delete(ctx context.Context, ids []int64) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	s := r.store
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, id := range ids {
		delete(s.goods, id)
	}
	return nil
}

func (r *memoryGoods) DeleteAllFromUser(ctx context.Context, userID int64) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	s := r.store
	s.mu.Lock()
	defer s.mu.Unlock()

	for id, g := range s.goods {
		if g.UserID == userID {
			delete(s.goods, id)
		}
	}
	return nil
}

// =============================================================================
// Расчёты
// =============================================================================

type memoryCalculations struct {
	store *MemoryStore
}

func (r *memoryCalculations) Add(ctx context.Context, calculation *domain.Calculation) (int64, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}

	s := r.store
	s.mu.Lock()
	defer s.mu.Unlock()

	s.nextCalculationID++
	c := cloneCalculation(*calculation)
	c.ID = s.nextCalculationID
	s.calculations[c.ID] = c
	return c.ID, nil
}

func (r *memoryCalculations) Query(ctx context.Context, filter domain.CalculationFilter) ([]domain.Calculation, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if filter.Limit <= 0 {
		return []domain.Calculation{}, nil
	}

	s := r.store
	s.mu.RLock()
	defer s.mu.RUnlock()

	var owned []domain.Calculation
	for _, c := range s.calculations {
		if c.UserID == filter.UserID {
			owned = append(owned, c)
		}
	}
	slices.SortFunc(owned, func(a, b domain.Calculation) int {
		if byTime := b.CreatedAt.Compare(a.CreatedAt); byTime != 0 {
			return byTime
		}
		return cmp.Compare(b.ID, a.ID)
	})

	offset := max(filter.Offset, 0)
	if offset >= len(owned) {
		return []domain.Calculation{}, nil
	}
	end := min(offset+filter.Limit, len(owned))

	out := make([]domain.Calculation, 0, end-offset)
	for _, c := range owned[offset:end] {
		out = append(out, cloneCalculation(c))
	}
	return out, nil
}

func (r *memoryCalculations) GetByIDs(ctx context.Context, ids []int64) ([]domain.Calculation, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	s := r.store
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := []domain.Calculation{}
	for _, id := range domain.UniqueIDs(ids) {
		if c, ok := s.calculations[id]; ok {
			out = append(out, cloneCalculation(c))
		}
	}
	return out, nil
}

func (r *memoryCalculations) Delete(ctx context.Context, ids []int64) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	s := r.store
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, id := range ids {
		delete(s.calculations, id)
	}
	return nil
}

func (r *memoryCalculations) DeleteAllFromUser(ctx context.Context, userID int64) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	s := r.store
	s.mu.Lock()
	defer s.mu.Unlock()

	for id, c := range s.calculations {
		if c.UserID == userID {
			delete(s.calculations, id)
		}
	}
	return nil
}

func cloneCalculation(c domain.Calculation) domain.Calculation {
	c.GoodIDs = slices.Clone(c.GoodIDs)
	if c.GoodIDs == nil {
		c.GoodIDs = []int64{}
	}
	return c
}
