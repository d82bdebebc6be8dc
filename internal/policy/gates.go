package policy

import "github.com/bingoo/platform/internal/domain"

// CheckClaim applies the claim rules in order: availability, region, then affordability.
// The prize and user must be the locked rows read inside the claiming transaction.
func CheckClaim(prize *domain.Prize, user *domain.User) error {
	if !prize.Active {
		return domain.ErrPrizeUnavailable("prize is no longer active")
	}
	if prize.Stock <= 0 {
		return domain.ErrPrizeUnavailable("prize is out of stock")
	}
	if !prize.AvailableIn(user.Region) {
		return domain.ErrPrizeUnavailable("prize is not available in your region")
	}
	if user.Points < prize.PointValue {
		return domain.ErrInsufficientPoints()
	}
	return nil
}

// CheckJoin applies the tournament entry rules in order: status, capacity, then entry fee.
// Duplicate entry is left to the unique constraint on (tournament_id, user_id).
func CheckJoin(t *domain.Tournament, userPoints int64) error {
	if t.Status != domain.TournamentRegistering {
		return domain.ErrRegistrationClosed()
	}
	if t.MaxPlayers > 0 && t.Participants >= t.MaxPlayers {
		return domain.ErrTournamentFull()
	}
	if userPoints < t.EntryFee {
		return domain.ErrInsufficientPoints()
	}
	return nil
}

// CheckAdjustment rejects admin adjustments that would leave a negative balance.
func CheckAdjustment(current, delta int64) error {
	if delta == 0 {
		return domain.ErrValidation("adjustment must be non-zero")
	}
	if current+delta < 0 {
		return domain.ErrInsufficientPoints()
	}
	return nil
}
