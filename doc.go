/*Package wordfreq counts word frequencies in text using data-parallel
aggregation.

Input text is split into tokens by removing periods and commas and splitting
on whitespace. Tokens are partitioned into contiguous chunks, each chunk is
accumulated into its own frequency table by a separate goroutine, and the
partial tables are merged pairwise into the final table. Merging only adds
counts, so the result is the same for any number of workers or chunk size.

A Driver wires this to the outside world: inputs may be local files, globs
or S3 objects, and reports may be written as text, JSON or YAML to stdout,
a local file or S3. The same binary can also be deployed as an AWS Lambda
function that counts a job remotely.
*/
package wordfreq
