// Package wgl implements the wgl platform on Windows. Displays and pixel
// format selection work; context creation is not implemented yet and window
// operations are unsupported.
package wgl
