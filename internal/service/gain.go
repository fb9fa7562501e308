package service

import (
	"context"
	"errors"
	"fmt"
	"io"

	"myo_monitor/internal/models"
)

var ErrInvalidGain = errors.New("invalid gain: must be one of 1, 2, 4, 5, 8, 10, 16, 32")

// GainService writes gain selections to the device. The device echoes
// nothing back.
type GainService struct {
	w io.ByteWriter
}

func NewGainService(w io.ByteWriter) *GainService {
	return &GainService{w: w}
}

// SetGain writes exactly one byte equal to the multiplier.
func (s *GainService) SetGain(ctx context.Context, g models.Gain) error {
	if !g.Valid() {
		return fmt.Errorf("%w: got %d", ErrInvalidGain, uint8(g))
	}
	if err := ctx.Err(); err != nil {
		return err
	}
	return s.w.WriteByte(g.Byte())
}
