package pose

import "garment-warp-renderer/internal/mathutil"

const (
	shoulderSmoothWeight = 0.3
	elbowSmoothWeight    = 0.4
)

// SmoothPoint pulls p toward its neighbors:
//
//	(p + Σ weight·n) / (1 + weight·len(neighbors))
func SmoothPoint(p mathutil.Vec2, neighbors []mathutil.Vec2, weight float64) mathutil.Vec2 {
	if len(neighbors) == 0 {
		return p
	}
	sum := p
	for _, n := range neighbors {
		sum = sum.Add(n.Scale(weight))
	}
	return sum.Scale(1 / (1 + weight*float64(len(neighbors))))
}

// Smooth damps landmark jitter. Shoulders are pulled toward the elbow on
// the same side; elbows toward the shoulder and wrist. Neighbors are always
// the unsmoothed input positions, and missing ones are left out entirely.
// The input is not modified.
func Smooth(p Points) Points {
	out := make(Points, len(p))
	for n, v := range p {
		out[n] = v
	}

	sides := []struct{ shoulder, elbow, wrist Name }{
		{LeftShoulder, LeftElbow, LeftWrist},
		{RightShoulder, RightElbow, RightWrist},
	}
	for _, s := range sides {
		shoulder, hasShoulder := p[s.shoulder]
		elbow, hasElbow := p[s.elbow]
		wrist, hasWrist := p[s.wrist]

		if hasShoulder && hasElbow {
			out[s.shoulder] = SmoothPoint(shoulder, []mathutil.Vec2{elbow}, shoulderSmoothWeight)
		}
		if hasElbow {
			var neighbors []mathutil.Vec2
			if hasShoulder {
				neighbors = append(neighbors, shoulder)
			}
			if hasWrist {
				neighbors = append(neighbors, wrist)
			}
			out[s.elbow] = SmoothPoint(elbow, neighbors, elbowSmoothWeight)
		}
	}
	return out
}
