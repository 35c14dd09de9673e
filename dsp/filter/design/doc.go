// Package design provides RBJ shelving coefficient designers.
//
// The functions in this package produce biquad coefficients consumable by
// dsp/filter/biquad for runtime processing. Shelves can be specified by
// quality factor ([LowShelf], [HighShelf]) or by shelf slope
// ([LowShelfSlope], [HighShelfSlope]). Invalid frequencies or sample rates
// yield zero coefficients.
package design
