// Package gpu detects hardware video encoders and builds the ordered
// candidate list used when encoding. Detection parses ffmpeg's encoder
// listing and cross-checks the PCI bus; selection always terminates in a
// software encoder so a conversion can proceed on any machine.
package gpu
