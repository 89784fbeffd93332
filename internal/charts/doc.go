// Package charts renders the accident statistics as PNG figures with gonum/plot.
//
// Every chart is written into the renderer's directory under a fixed,
// numbered file name (01_yearly_trend.png through 07_state_comparison.png).
// Share-of-total charts are drawn as horizontal percentage bars.
package charts
