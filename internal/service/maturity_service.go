package service

import (
	"log"

	"pairvest/internal/domain"
	"pairvest/internal/repository"

	"gorm.io/gorm"
)

// MaturityService promotes confirmed investments whose countdown elapsed to
// matured, making them eligible for payout pairing.
type MaturityService struct {
	db    *gorm.DB
	clock domain.Clock
}

func NewMaturityService(db *gorm.DB, clock domain.Clock) *MaturityService {
	return &MaturityService{db: db, clock: clock}
}

// RunMaturitySweep matures every due investment. Each record is handled in
// its own transaction; the status compare-and-swap makes the sweep safe to
// run concurrently and repeatedly. Returns the number of investments matured.
func (s *MaturityService) RunMaturitySweep() (int, error) {
	now := s.clock.Now()
	due, err := repository.NewInvestmentRepository(s.db).DueForMaturity(now)
	if err != nil {
		return 0, err
	}

	matured := 0
	for i := range due {
		inv := due[i]
		err := s.db.Transaction(func(tx *gorm.DB) error {
			invRepo := repository.NewInvestmentRepository(tx)
			ok, err := invRepo.MarkMatured(inv.ID, now)
			if err != nil {
				return err
			}
			if !ok {
				return nil // another sweep matured it
			}
			if inv.ReturnAmount.IsZero() {
				ret := ComputeReturn(inv.Amount, inv.MaturityPeriod, inv.ReferralBonusUsed)
				if err := invRepo.BackfillReturn(inv.ID, ret); err != nil {
					return err
				}
			}
			matured++
			return nil
		})
		if err != nil {
			log.Printf("[maturity] sweep: investment %d deferred: %v", inv.ID, err)
		}
	}

	s.notifyMatured()
	return matured, nil
}

// notifyMatured tells owners of freshly matured investments, once per
// investment. Delivery is best effort; the flag flip is what must be
// exactly-once.
func (s *MaturityService) notifyMatured() {
	invRepo := repository.NewInvestmentRepository(s.db)
	pending, err := invRepo.MaturedUnnotified()
	if err != nil {
		log.Printf("[maturity] notify: %v", err)
		return
	}
	for i := range pending {
		inv := pending[i]
		ok, err := invRepo.MarkNotified(inv.ID)
		if err != nil {
			log.Printf("[maturity] notify: investment %d: %v", inv.ID, err)
			continue
		}
		if ok {
			log.Printf("[maturity] investment %d (user %d) matured: %s due",
				inv.ID, inv.UserID, inv.ReturnAmount)
		}
	}
}
