package api

import "errors"

// Validator - интерфейс, который могут реализовать DTO
type Validator interface {
	Validate() error
}

func (p MovePayload) Validate() error {
	if p.Direction != "" {
		if p.Direction != DirectionToward && p.Direction != DirectionAway {
			return errors.New("direction must be toward or away")
		}
		if p.Dx != 0 || p.Dy != 0 {
			return errors.New("direction and step are mutually exclusive")
		}
		return nil
	}
	if p.Dx == 0 && p.Dy == 0 {
		return errors.New("movement vector cannot be zero")
	}
	if p.Dx < -1 || p.Dx > 1 || p.Dy < -1 || p.Dy > 1 {
		return errors.New("movement step too large")
	}
	return nil
}

// IsCombatMove - перемещение между ярусами дистанции, а не по карте.
func (p MovePayload) IsCombatMove() bool {
	return p.Direction != ""
}

func (p TargetPayload) Validate() error {
	if p.TargetID.IsNil() {
		return errors.New("targetId is required")
	}
	return nil
}

func (p ItemPayload) Validate() error {
	if p.ItemID == "" {
		return errors.New("itemId is required")
	}
	return nil
}

func (p GameActionPayload) Validate() error {
	if p.ActionID == "" {
		return errors.New("actionId is required")
	}
	if p.Action == "" {
		return errors.New("action is required")
	}
	return nil
}

func (p HandshakePayload) Validate() error {
	if p.PeerID == "" {
		return errors.New("peerId is required")
	}
	if p.ProtocolVersion <= 0 {
		return errors.New("protocolVersion is required")
	}
	return nil
}

func (p HandshakeAckPayload) Validate() error {
	if p.Width <= 0 || p.Height <= 0 {
		return errors.New("world size must be positive")
	}
	if !p.Style.Valid() {
		return errors.New("unknown world style")
	}
	return nil
}

func (p ActionRejectedPayload) Validate() error {
	if p.Reason == "" {
		return errors.New("reason is required")
	}
	return nil
}
