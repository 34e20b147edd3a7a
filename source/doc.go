// Package source connects grid catalogues to the interpolation core. A
// Source lists the records of one PHOENIX grid and loads their spectra;
// sources are looked up by name through a Registry built at startup.
//
// Concrete sources live in sub-packages (hires, synphot) and reach their
// files through an Opener: the local filesystem, an HTTP download cache
// (httpfetch) or an object store bucket (objstore).
package source
