// Package timegrid computes the weight schedules that redistribute a
// producer's sampled values across a consumer's sampling grid when the two
// sides of an exchange advance at different rates.
package timegrid

// A Rate is the number of fine clock ticks per one step of a component.
type Rate int

// gcd returns the greatest common divisor of two positive rates.
func gcd(a, b Rate) Rate {
	for b != 0 {
		a, b = b, a%b
	}

	return a
}

// lcm returns the least common multiple of two positive rates.
func lcm(a, b Rate) Rate {
	return a / gcd(a, b) * b
}
