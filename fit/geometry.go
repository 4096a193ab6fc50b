package fit

import "math"

// computeGeometry derives the interferometric correction factor, the
// axis step, and the sinc width from the instrument geometry. The sinc
// width is set by the maximum path difference of the mirror travel.
func (s *Session) computeGeometry() {
	cosTheta := math.Abs(math.Cos(s.cfg.Theta * math.Pi / 180))

	s.corr = 1 / cosTheta

	travel := s.cfg.DeltaX * float64(s.cfg.NSteps-s.cfg.ZPDIndex)
	s.axisStep = s.corr / (2 * travel) * 1e7

	mpd := cosTheta * travel / 1e7
	s.sincWidth = 1 / (2 * mpd)
}
