// Package enhance turns a single decoded RAW exposure into a stylised,
// platform-ready image.
//
// The package is organised around three layers. The analysis engine reads the
// decoded pixel buffer once and produces an immutable Analysis record: scalar
// measurements (brightness, saturation, sharpness, noise), category flags, and
// region masks (sky, skin, vegetation, water, foreground). A shared toolkit of
// stateless Mat operations (CLAHE, adaptive gamma, unsharp masking, region
// blending, colour-aware denoising) is composed by the preset strategies, each
// a pure function from (pixels, analysis) to new pixels. The Runner sequences
// decode, analyse, enhance and encode, reporting progress at every stage
// boundary and selecting output quality from the image content.
//
// All pixel buffers are 3-channel 8-bit gocv Mats in OpenCV's native BGR
// channel order. Every strategy preserves dimensions and channel count and
// clips values to [0, 255] before returning.
package enhance
