package magnet

// Unit is the field unit the controller speaks to its caller.
type Unit string

// Supported field units. The calibration fits are in Oersted; millitesla
// values are converted at the boundary (1 mT = 10 Oe).
const (
	Oersted    Unit = "Oe"
	Millitesla Unit = "mT"
)

// Curve holds polynomial coefficients in ascending power order.
type Curve [6]float64

// Eval evaluates the polynomial at x.
func (p Curve) Eval(x float64) float64 {
	y := 0.0
	for i := len(p) - 1; i >= 0; i-- {
		y = y*x + p[i]
	}
	return y
}

// Least-squares fits for the in-plane prober magnet. The forward and inverse
// curves were fitted independently against the same bench data: they are not
// algebraic inverses of each other, and a field -> voltage -> field round
// trip carries a small residual. Keep both as measured; do not re-derive one
// from the other.
var (
	// fieldToVolt maps magnetic field (Oe) to magnet drive voltage (V).
	fieldToVolt = Curve{-0.01268, 0.00281, 3.02608e-10, -1.5036e-11, -1.66895e-16, 3.15376e-18}

	// voltToField maps Hall sensor voltage (V) to magnetic field (Oe).
	voltToField = Curve{-0.05665, 260.16273, -2.1979e-5, 0.01858, 1.97225e-4, -2.33726e-4}
)

// Calibration converts between field values in the configured unit and
// voltages on the drive and sense channels.
type Calibration struct {
	Unit Unit
}

// FieldToVoltage returns the drive voltage for a target field.
func (c Calibration) FieldToVoltage(field float64) float64 {
	if c.Unit == Millitesla {
		field *= 10
	}
	return fieldToVolt.Eval(field)
}

// VoltageToField returns the field for a measured Hall voltage.
func (c Calibration) VoltageToField(volt float64) float64 {
	field := voltToField.Eval(volt)
	if c.Unit == Millitesla {
		field /= 10
	}
	return field
}
