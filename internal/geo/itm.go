package geo

import "math"

// Irish Transverse Mercator (EPSG:2157) on the GRS80 ellipsoid.
// Projection constants per the OSi/OSNI joint specification.
const (
	semiMajor     = 6378137.0
	flattening    = 1.0 / 298.257222101
	scaleFactor   = 0.99982
	originLatDeg  = 53.5
	originLonDeg  = -8.0
	falseEasting  = 600000.0
	falseNorthing = 750000.0
)

var (
	e2  = flattening * (2 - flattening)
	e4  = e2 * e2
	e6  = e4 * e2
	ep2 = e2 / (1 - e2)
)

func meridianArc(phi float64) float64 {
	return semiMajor * ((1-e2/4-3*e4/64-5*e6/256)*phi -
		(3*e2/8+3*e4/32+45*e6/1024)*math.Sin(2*phi) +
		(15*e4/256+45*e6/1024)*math.Sin(4*phi) -
		(35*e6/3072)*math.Sin(6*phi))
}

// ToITM projects a WGS84 coordinate to ITM easting/northing in metres.
// The datum shift between WGS84 and the ETRS89 realization ITM is defined
// on is below a centimetre over Ireland and is ignored.
func ToITM(lat, lon float64) (easting, northing float64) {
	phi := lat * math.Pi / 180
	lam := lon * math.Pi / 180
	phi0 := originLatDeg * math.Pi / 180
	lam0 := originLonDeg * math.Pi / 180

	sinPhi := math.Sin(phi)
	cosPhi := math.Cos(phi)
	tanPhi := math.Tan(phi)

	n := semiMajor / math.Sqrt(1-e2*sinPhi*sinPhi)
	t := tanPhi * tanPhi
	c := ep2 * cosPhi * cosPhi
	a := cosPhi * (lam - lam0)

	m := meridianArc(phi)
	m0 := meridianArc(phi0)

	a2 := a * a
	a3 := a2 * a
	a4 := a3 * a
	a5 := a4 * a
	a6 := a5 * a

	easting = falseEasting + scaleFactor*n*(a+
		(1-t+c)*a3/6+
		(5-18*t+t*t+72*c-58*ep2)*a5/120)

	northing = falseNorthing + scaleFactor*(m-m0+n*tanPhi*(a2/2+
		(5-t+9*c+4*c*c)*a4/24+
		(61-58*t+t*t+600*c-330*ep2)*a6/720))

	return easting, northing
}

// FromITM inverts the projection, returning WGS84 latitude and longitude
// in degrees.
func FromITM(easting, northing float64) (lat, lon float64) {
	phi0 := originLatDeg * math.Pi / 180
	lam0 := originLonDeg * math.Pi / 180

	m0 := meridianArc(phi0)
	m := m0 + (northing-falseNorthing)/scaleFactor

	mu := m / (semiMajor * (1 - e2/4 - 3*e4/64 - 5*e6/256))

	e1 := (1 - math.Sqrt(1-e2)) / (1 + math.Sqrt(1-e2))
	e1sq := e1 * e1

	phi1 := mu +
		(3*e1/2-27*e1*e1sq/32)*math.Sin(2*mu) +
		(21*e1sq/16-55*e1sq*e1sq/32)*math.Sin(4*mu) +
		(151*e1*e1sq/96)*math.Sin(6*mu) +
		(1097*e1sq*e1sq/512)*math.Sin(8*mu)

	sinPhi1 := math.Sin(phi1)
	cosPhi1 := math.Cos(phi1)
	tanPhi1 := math.Tan(phi1)

	c1 := ep2 * cosPhi1 * cosPhi1
	t1 := tanPhi1 * tanPhi1
	n1 := semiMajor / math.Sqrt(1-e2*sinPhi1*sinPhi1)
	r1 := semiMajor * (1 - e2) / math.Pow(1-e2*sinPhi1*sinPhi1, 1.5)
	d := (easting - falseEasting) / (n1 * scaleFactor)

	d2 := d * d
	d3 := d2 * d
	d4 := d3 * d
	d5 := d4 * d
	d6 := d5 * d

	phi := phi1 - (n1*tanPhi1/r1)*(d2/2-
		(5+3*t1+10*c1-4*c1*c1-9*ep2)*d4/24+
		(61+90*t1+298*c1+45*t1*t1-252*ep2-3*c1*c1)*d6/720)

	lam := lam0 + (d-
		(1+2*t1+c1)*d3/6+
		(5-2*c1+28*t1-3*c1*c1+8*ep2+24*t1*t1)*d5/120)/cosPhi1

	return phi * 180 / math.Pi, lam * 180 / math.Pi
}
