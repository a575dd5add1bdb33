package domain

// EventType identifies one kind of trade action in a wheel cycle's log.
type EventType string

const (
	EventSellPut          EventType = "SELL_PUT"
	EventPutExpired       EventType = "PUT_EXPIRED"
	EventPutAssigned      EventType = "PUT_ASSIGNED"
	EventOutrightPurchase EventType = "OUTRIGHT_PURCHASE"
	EventSellCall         EventType = "SELL_CALL"
	EventCallExpired      EventType = "CALL_EXPIRED"
	EventBuyToClose       EventType = "BUY_TO_CLOSE"
	EventCallAssigned     EventType = "CALL_ASSIGNED"
	EventSellShares       EventType = "SELL_SHARES"
)

// IsOption reports whether the event type concerns an option leg rather
// than a plain stock transaction.
func (t EventType) IsOption() bool {
	switch t {
	case EventSellPut, EventPutExpired, EventPutAssigned,
		EventSellCall, EventCallExpired, EventBuyToClose, EventCallAssigned:
		return true
	}
	return false
}

// CycleStatus represents the lifecycle status of a wheel cycle.
type CycleStatus string

const (
	CycleOpen   CycleStatus = "open"
	CycleClosed CycleStatus = "closed"
)

// AcquisitionMethod records how a lot came into existence.
type AcquisitionMethod string

const (
	MethodCashSecuredPutReservation AcquisitionMethod = "CASH_SECURED_PUT_RESERVATION"
	MethodPutAssignment             AcquisitionMethod = "PUT_ASSIGNMENT"
	MethodOutrightPurchase          AcquisitionMethod = "OUTRIGHT_PURCHASE"
)

// LotStatus represents the current state of a lot.
type LotStatus string

const (
	LotCashReserved     LotStatus = "CASH_RESERVED"
	LotOpenUncovered    LotStatus = "OPEN_UNCOVERED"
	LotOpenCovered      LotStatus = "OPEN_COVERED"
	LotClosedSold       LotStatus = "CLOSED_SOLD"
	LotClosedCalledAway LotStatus = "CLOSED_CALLED_AWAY"
)

// IsOpen reports whether a lot in this status still holds shares.
func (s LotStatus) IsOpen() bool {
	return s == LotOpenUncovered || s == LotOpenCovered
}

// IsClosed reports whether a lot in this status has been exited.
func (s LotStatus) IsClosed() bool {
	return s == LotClosedSold || s == LotClosedCalledAway
}

// Phase is one stage of the wheel lifecycle.
type Phase string

const (
	PhaseNone           Phase = ""
	PhaseCashSecuredPut Phase = "CASH_SECURED_PUT"
	PhaseSharesAcquired Phase = "SHARES_ACQUIRED"
	PhaseCoveredCall    Phase = "COVERED_CALL"
	PhaseCalledAway     Phase = "CALLED_AWAY"
)

// InstrumentType identifies the kind of instrument in a broker position snapshot.
type InstrumentType string

const (
	InstrumentStock InstrumentType = "stock"
	InstrumentCall  InstrumentType = "call"
	InstrumentPut   InstrumentType = "put"
)

// Strategy is a detected options strategy archetype.
type Strategy string

const (
	StrategyFullWheel      Strategy = "full_wheel"
	StrategyCoveredCall    Strategy = "covered_call"
	StrategyCashSecuredPut Strategy = "cash_secured_put"
	StrategyNakedStock     Strategy = "naked_stock"
)

// Confidence is the three-tier confidence level of a detection.
type Confidence string

const (
	ConfidenceHigh   Confidence = "high"
	ConfidenceMedium Confidence = "medium"
	ConfidenceLow    Confidence = "low"
)

// SharesPerContract is the standard option contract multiplier.
const SharesPerContract = 100
