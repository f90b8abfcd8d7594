package service

import (
	"errors"
	"fmt"
	"log"

	"pairvest/internal/domain"
	"pairvest/internal/models"
	"pairvest/internal/repository"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// PairingService matches matured investments (payees, owed their return)
// against pending investments (payers, obligated for their principal) and
// drives the multi-party confirmation protocol until a payer's obligation is
// fully settled.
type PairingService struct {
	db          *gorm.DB
	clock       domain.Clock
	investments *InvestmentService
	bonus       *BonusService
}

func NewPairingService(db *gorm.DB, clock domain.Clock, investments *InvestmentService, bonus *BonusService) *PairingService {
	return &PairingService{db: db, clock: clock, investments: investments, bonus: bonus}
}

// RunPairingSweep allocates matured payouts against pending obligations,
// greedily and deterministically: matured oldest-first, each drawing from
// the oldest unconsumed pending investment. Each matured investment is
// processed in its own transaction so one record's failure never aborts the
// sweep. Returns the number of pairings created.
func (s *PairingService) RunPairingSweep() (int, error) {
	matured, err := repository.NewInvestmentRepository(s.db).MaturedPayees()
	if err != nil {
		return 0, err
	}
	created := 0
	for i := range matured {
		m := matured[i]
		err := s.db.Transaction(func(tx *gorm.DB) error {
			n, err := s.pairMatured(tx, m.ID)
			created += n
			return err
		})
		if err != nil {
			log.Printf("[pairing] sweep: investment %d deferred: %v", m.ID, err)
		}
	}
	s.settleFundedGroups()
	return created, nil
}

// settleFundedGroups promotes payers whose group is fully paid but whose
// settlement never ran. Two confirmations of the same group committing
// concurrently can each see the other's pairing as still unpaid in their own
// snapshot, leaving the group paid with no countdown; this pass picks those
// up on the next cycle. The settled flag guarantees the promotion runs once.
func (s *PairingService) settleFundedGroups() {
	waiting, err := repository.NewInvestmentRepository(s.db).AwaitingSettlement()
	if err != nil {
		log.Printf("[pairing] settlement: %v", err)
		return
	}
	for i := range waiting {
		id := waiting[i].ID
		err := s.db.Transaction(func(tx *gorm.DB) error {
			txPair := repository.NewPairingRepository(tx)
			txInv := repository.NewInvestmentRepository(tx)
			payer, err := txInv.GetByID(id)
			if err != nil {
				return err
			}
			group, err := txPair.GetGroupByInvestmentID(payer.ID)
			if err != nil {
				return err
			}
			unsettled, err := txPair.CountUnsettled(group.ID)
			if err != nil {
				return err
			}
			paid, err := txPair.SumConfirmedPaid(group.ID)
			if err != nil {
				return err
			}
			// Payees share the paired status but their own group holds no
			// confirmed payments, so the paid-sum check excludes them.
			if unsettled > 0 || paid.LessThan(payer.Amount) {
				return nil
			}
			now := s.clock.Now()
			ok, err := txPair.MarkGroupSettled(group.ID, now)
			if err != nil || !ok {
				return err
			}
			if err := s.investments.StartCountdownTx(tx, payer, now); err != nil {
				return err
			}
			return s.bonus.ConfirmForReferredTx(tx, payer.UserID)
		})
		if err != nil {
			log.Printf("[pairing] settlement: investment %d deferred: %v", id, err)
		}
	}
}

func (s *PairingService) pairMatured(tx *gorm.DB, maturedID uint) (int, error) {
	invRepo := repository.NewInvestmentRepository(tx)
	pairRepo := repository.NewPairingRepository(tx)

	payee, err := invRepo.GetByID(maturedID)
	if err != nil {
		return 0, err
	}
	if payee.Status != domain.InvestmentMatured {
		return 0, nil // another sweep got here first
	}
	outstanding := payee.RemainingPayout
	if !outstanding.GreaterThan(decimal.Zero) {
		_, err := invRepo.SetStatusIf(payee.ID, domain.InvestmentPaired, domain.InvestmentMatured)
		return 0, err
	}

	pending, err := invRepo.PendingPayers()
	if err != nil {
		return 0, err
	}

	created := 0
	for i := range pending {
		if !outstanding.GreaterThan(decimal.Zero) {
			break
		}
		payer := pending[i]
		// Never pair an investment with itself or within one investor.
		if payer.ID == payee.ID || payer.UserID == payee.UserID {
			continue
		}
		slice := decimal.Min(outstanding, payer.RemainingObligation)
		if !slice.GreaterThan(decimal.Zero) {
			continue
		}

		ok, err := invRepo.AllocateObligation(payer.ID, slice)
		if err != nil {
			return created, err
		}
		if !ok {
			// Lost the balance CAS to a concurrent sweep; the payer is
			// retried on the next cycle.
			continue
		}
		ok, err = invRepo.AllocatePayout(payee.ID, slice)
		if err != nil {
			return created, err
		}
		if !ok {
			return created, fmt.Errorf("%w: payout balance of investment %d", domain.ErrConflict, payee.ID)
		}

		group, err := pairRepo.GetGroupByInvestmentID(payer.ID)
		if err != nil {
			return created, err
		}
		now := s.clock.Now()
		pairing := &models.Pairing{
			GroupID:             group.ID,
			MaturedInvestmentID: payee.ID,
			NewInvestmentID:     payer.ID,
			MaturedInvestorID:   payee.UserID,
			NewInvestorID:       payer.UserID,
			AmountPaired:        slice,
			Status:              domain.PairingPending,
			PaymentStatus:       domain.PaymentPending,
			PairedAt:            now,
			PaymentDueDate:      now.Add(domain.PaymentWindow),
		}
		if err := pairRepo.Create(pairing); err != nil {
			return created, err
		}
		created++
		outstanding = outstanding.Sub(slice)

		if payer.RemainingObligation.Sub(slice).IsZero() {
			if _, err := invRepo.SetStatusIf(payer.ID, domain.InvestmentPaired, domain.InvestmentPending); err != nil {
				return created, err
			}
		}
	}

	if outstanding.IsZero() {
		if _, err := invRepo.SetStatusIf(payee.ID, domain.InvestmentPaired, domain.InvestmentMatured); err != nil {
			return created, err
		}
	}
	return created, nil
}

// ConfirmPayment is performed by the pairing's payee (the matured investor)
// once the payer's money arrives. On full settlement of the payer's group,
// the payer investment is confirmed, its countdown starts, and the payer's
// referrers get their delayed bonus credit. The whole operation is one
// atomic unit; concurrent confirmations of one pairing serialize on the
// payment_status compare-and-swap so only the first succeeds.
func (s *PairingService) ConfirmPayment(pairingID, actingUserID uint) (*models.Pairing, error) {
	pairRepo := repository.NewPairingRepository(s.db)
	p, err := pairRepo.GetByID(pairingID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("%w: pairing %d", domain.ErrNotFound, pairingID)
		}
		return nil, err
	}
	if p.MaturedInvestorID != actingUserID {
		return nil, domain.ErrUnauthorized
	}
	if p.PaymentStatus == domain.PaymentPaid {
		return nil, domain.ErrAlreadyConfirmed
	}

	err = s.db.Transaction(func(tx *gorm.DB) error {
		txPair := repository.NewPairingRepository(tx)
		txInv := repository.NewInvestmentRepository(tx)
		now := s.clock.Now()

		ok, err := txPair.MarkPaid(p.ID, now)
		if err != nil {
			return err
		}
		if !ok {
			return domain.ErrAlreadyConfirmed
		}

		payer, err := txInv.GetByID(p.NewInvestmentID)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return fmt.Errorf("%w: investment %d", domain.ErrNotFound, p.NewInvestmentID)
			}
			return err
		}

		// Settlement progress is measured against confirmed payments only.
		// RemainingObligation is the pairing engine's allocation tracker and
		// is never rewritten here: restoring already-allocated obligation
		// would let a later sweep draw the same money twice.
		paid, err := txPair.SumConfirmedPaid(p.GroupID)
		if err != nil {
			return err
		}
		remaining := decimal.Max(decimal.Zero, payer.Amount.Sub(paid))
		if remaining.GreaterThan(decimal.Zero) {
			if _, err := txInv.SetStatusIf(payer.ID, domain.InvestmentPartiallyPaid, domain.InvestmentPaired); err != nil {
				return err
			}
		}

		// Payee side: accumulate the received payment and complete the
		// payout once the full return amount has been collected.
		if err := txInv.RecordPayeePayment(p.MaturedInvestmentID, p.AmountPaired, now); err != nil {
			return err
		}
		payee, err := txInv.GetByID(p.MaturedInvestmentID)
		if err != nil {
			return err
		}
		if payee.AmountPaid.GreaterThanOrEqual(payee.ReturnAmount) {
			if _, err := txInv.SetStatusIf(payee.ID, domain.InvestmentCompleted,
				domain.InvestmentPaired, domain.InvestmentPartiallyPaid); err != nil {
				return err
			}
		} else {
			if _, err := txInv.SetStatusIf(payee.ID, domain.InvestmentPartiallyPaid,
				domain.InvestmentPaired); err != nil {
				return err
			}
		}

		unsettled, err := txPair.CountUnsettled(p.GroupID)
		if err != nil {
			return err
		}
		if unsettled == 0 && remaining.IsZero() {
			ok, err := txPair.MarkGroupSettled(p.GroupID, now)
			if err != nil {
				return err
			}
			if ok {
				if err := s.investments.StartCountdownTx(tx, payer, now); err != nil {
					return err
				}
				if err := s.bonus.ConfirmForReferredTx(tx, payer.UserID); err != nil {
					return err
				}
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return pairRepo.GetByID(p.ID)
}

// RunOverdueSweep flags pairings whose 24-hour payment window lapsed without
// payment. Flagged pairings are escalated for operator review, not released
// back to the pool; a late confirmation is still accepted. Returns the
// number of pairings flagged.
func (s *PairingService) RunOverdueSweep() (int, error) {
	pairRepo := repository.NewPairingRepository(s.db)
	overdue, err := pairRepo.Overdue(s.clock.Now())
	if err != nil {
		return 0, err
	}
	flagged := 0
	for i := range overdue {
		p := overdue[i]
		ok, err := pairRepo.MarkOverdue(p.ID)
		if err != nil {
			log.Printf("[pairing] overdue: pairing %d deferred: %v", p.ID, err)
			continue
		}
		if ok {
			flagged++
			log.Printf("[pairing] pairing %d overdue: payer %d owes %s to payee %d since %s",
				p.ID, p.NewInvestorID, p.AmountPaired, p.MaturedInvestorID, p.PaymentDueDate.Format("2006-01-02 15:04"))
		}
	}
	return flagged, nil
}

// ListForUser returns pairings where the user is payer or payee.
func (s *PairingService) ListForUser(userID uint) ([]models.Pairing, error) {
	return repository.NewPairingRepository(s.db).ListForUser(userID)
}
