// Package sketch renders a stylized monochrome line illustration from a
// photograph using hand-written grayscale conversion, Sobel edge detection,
// and a contrast tone curve. Rendering is deterministic and fully local.
package sketch
