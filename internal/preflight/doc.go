// Package preflight provides readiness checks for the paths, stores,
// and API access the labeling pipeline depends on.
//
// These checks run in two contexts:
//   - The label command calls RunAll before starting a run, so a
//     missing row store or dead API key stops the run before any
//     model spend.
//   - The CLI "podium status" command renders every check so an
//     operator can see at a glance what still needs setup.
package preflight
