package report

const studentTemplate = `# CAD ASSESSMENT REPORT

## Student: {{.Student}}
## Date: {{.Date}}

---

## GEOMETRIC ACCURACY EVALUATION

### Overall Performance
- **Grade:** {{.Evaluation.Letter}} ({{printf "%.1f" .Evaluation.Score}}%)
- **Mean Deviation:** {{printf "%.4f" .Evaluation.Mean}} units
- **Maximum Deviation:** {{printf "%.4f" .Evaluation.Max}} units
- **Standard Deviation:** {{printf "%.4f" .Evaluation.Std}} units

### Detailed Metrics
- **Median Deviation:** {{printf "%.4f" .Evaluation.Median}} units
- **95th Percentile:** {{printf "%.4f" .Evaluation.P95}} units
- **99th Percentile:** {{printf "%.4f" .Evaluation.P99}} units
- **Hausdorff Distance:** {{printf "%.4f" .Evaluation.Hausdorff}} units

### Assessment Summary
{{.Assessment}}

---

## PLAGIARISM CHECK

### Similarity Analysis
{{- if .Matches}}
Potential issues detected:
{{- range .Matches}}
- Similar to: {{.SimilarTo}}
  - Suspicion Score: {{.Score}}%
  - Severity: {{.Severity}}
  - Evidence: {{range $i, $r := .Reasons}}{{if $i}}, {{end}}{{$r}}{{end}}
{{- end}}
{{- else}}
No plagiarism detected. Work appears to be original.
{{- end}}

---

## IMPROVEMENT RECOMMENDATIONS
{{range $i, $a := .Advice}}
{{inc $i}}. {{$a}}
{{- end}}

---

## GRADING SCALE REFERENCE
- **A Grade:** <=0.1 units mean deviation (95-100%)
- **B Grade:** <=0.5 units mean deviation (85-94%)
- **C Grade:** <=1.0 units mean deviation (75-84%)
- **D Grade:** <=2.0 units mean deviation (65-74%)
- **F Grade:** >2.0 units mean deviation (<65%)

---

*Report generated by cadgrade*
`

const summaryTemplate = `# CLASS ASSESSMENT SUMMARY

## Date: {{.Date}}

---

## Overall Statistics

- **Total Students:** {{.Students}}
- **Average Score:** {{printf "%.1f" .MeanScore}}%
- **Median Score:** {{printf "%.1f" .MedianScore}}%
- **Highest Score:** {{printf "%.1f" .HighScore}}%
- **Lowest Score:** {{printf "%.1f" .LowScore}}%
- **Standard Deviation:** {{printf "%.1f" .StdScore}}%

## Grade Distribution
{{range .Distribution}}
- **{{.Letter}} Grade:** {{.Count}} students ({{printf "%.1f" .Percent}}%)
{{- end}}

## Plagiarism Analysis
{{- if .TopPairs}}
- **Suspicious Pairs Found:** {{.TotalPairs}}
- **Pairs Requiring Investigation:**
{{- range .TopPairs}}
  - {{.NameA}} vs {{.NameB}} ({{.Score}}%, {{.Tier}})
{{- end}}
{{- else}}
- **No plagiarism patterns detected**
{{- end}}
{{- if .Failures}}

## Unevaluable Submissions
{{- range .Failures}}
- {{.Name}}: {{.Error}}
{{- end}}
{{- end}}

---

*Report generated by cadgrade*
`
