/*Package interval loads the "valid region" BED files that define where
  coverage is computed and reported.
  Regions are grouped per chromosome and each chromosome is assigned a small
  integer index, so downstream per-chromosome arrays can be addressed without
  a map lookup.  Overlapping intervals are kept as given, not merged.
  Positions are PosType, currently int32 since that's what BAM files are
  limited to.
*/
package interval
