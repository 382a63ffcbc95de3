package blobio

// DeviceCPU is the device tag every payload is forced onto when the
// CPU-only decode option is set.
const DeviceCPU = "cpu"

// tensorDeviceKey is the map key carrying the device tag in untyped
// payloads.
const tensorDeviceKey = "device"

// Tensor is a dense numeric payload with a device tag, the shape produced
// by model-training pipelines. Data is stored flat in row-major order.
type Tensor struct {
	Device string    `msgpack:"device"`
	Shape  []int64   `msgpack:"shape"`
	Data   []float64 `msgpack:"data"`
}

// Len reports the number of elements the shape describes.
func (t *Tensor) Len() int {
	if len(t.Shape) == 0 {
		return 0
	}
	n := int64(1)
	for _, d := range t.Shape {
		n *= d
	}
	return int(n)
}
